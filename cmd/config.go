package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/lingopad/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long:  `Manage configuration settings for lingopad.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init [DATABASE_URL]",
	Short: "Initialize configuration file",
	Long: `Create a new configuration file. Without an argument the translation history
is kept in a SQLite database next to the configuration file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var databaseURL string
		if len(args) > 0 {
			databaseURL = args[0]
		}

		if err := config.InitConfig(databaseURL); err != nil {
			return err
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		cmd.Printf("Created configuration file: %s\n", configPath)
		cmd.Println("Edit it to set provider credentials, or to point database_url at PostgreSQL.")

		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration file path and effective settings. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		cmd.Printf("Configuration file: %s\n\n", configPath)

		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		cmd.Printf("DATABASE_URL:        %s\n", maskDatabaseURL(cfg.DatabaseURL))
		cmd.Printf("Environment:         %s\n", cfg.Environment)
		cmd.Printf("Log level:           %s\n", cfg.LogLevel)
		cmd.Printf("Listen address:      %s\n", cfg.Addr())
		cmd.Printf("Local model:         %s\n", enabled(!cfg.Translation.DisableLocal))
		cmd.Printf("Provider timeout:    %s\n", cfg.Translation.ProviderTimeout)
		cmd.Printf("Default save method: %s\n", cfg.Translation.DefaultMethod)
		cmd.Printf("Hugging Face token:  %s\n", mask(cfg.HuggingFace.Token))
		cmd.Printf("AWS region:          %s\n", cfg.AWS.Region)
		cmd.Printf("AWS access key:      %s\n", mask(cfg.AWS.AccessKeyID))

		return nil
	},
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// mask keeps the first four characters of a secret
func mask(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 4:
		return "****"
	default:
		return secret[:4] + "****"
	}
}

// maskDatabaseURL hides the password of a postgres URL
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
