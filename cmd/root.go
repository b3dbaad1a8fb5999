// Package cmd holds the lingopad command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/lingopad/internal/app"
	"github.com/Taichi-iskw/lingopad/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lingopad",
	Short: "Translate English text into 18 languages with pronunciation hints",
	Long: `lingopad translates English text through a local NLLB model, the Hugging Face
inference API, or AWS Translate, falling back from one to the next, and keeps a
history of saved translations. Run 'lingopad serve' for the HTTP API.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadRuntime loads configuration and builds the logger from it
func loadRuntime() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, app.NewLogger(cfg), nil
}
