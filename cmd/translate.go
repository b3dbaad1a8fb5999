package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/lingopad/internal/app"
	"github.com/Taichi-iskw/lingopad/internal/config"
	"github.com/Taichi-iskw/lingopad/internal/handler"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

// translateCmd represents the translate command
var translateCmd = &cobra.Command{
	Use:   "translate [TEXT]",
	Short: "Translate English text",
	Long: `Translate English text into a supported language. Providers are tried in order
until one returns a usable translation; --method chooses which one goes first.`,
	Example: `  lingopad translate "Where is the station?" --to hindi
  lingopad translate "banana" --to tamil --method aws --save`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		method, _ := cmd.Flags().GetString("method")
		save, _ := cmd.Flags().GetBool("save")
		format, _ := cmd.Flags().GetString("format")

		cfg, log, err := loadOptionalRuntime(save)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var hist history.Service
		if save {
			var cleanup func()
			hist, cleanup, err = app.NewHistory(ctx, cfg, app.StoreOptions{})
			if err != nil {
				return fmt.Errorf("failed to open translation store: %w", err)
			}
			defer cleanup()
		}

		h := handler.New(app.NewOrchestrator(cfg, log), hist, log)
		resp, err := h.Handle(ctx, handler.Request{
			InputText:         strings.Join(args, " "),
			TargetLanguage:    to,
			TranslationMethod: method,
			Save:              save,
		})
		if err != nil {
			return fmt.Errorf("failed to translate: %w", err)
		}
		if resp.Status != "success" {
			return fmt.Errorf("%s", resp.Message)
		}

		if strings.EqualFold(format, "json") {
			output, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format as JSON: %w", err)
			}
			cmd.Println(string(output))
			return nil
		}

		cmd.Printf("%s (%s)\n", resp.Data.TranslatedText, resp.Data.TranslationMethod)
		if resp.Data.Pronunciation != "" {
			cmd.Printf("Pronunciation: %s\n", resp.Data.Pronunciation)
		}
		if resp.SavedID > 0 {
			cmd.Printf("Saved as translation %d\n", resp.SavedID)
		}
		if resp.Message != "" {
			cmd.PrintErrln("Warning:", resp.Message)
		}
		return nil
	},
}

// pronounceCmd represents the pronounce command
var pronounceCmd = &cobra.Command{
	Use:   "pronounce [TEXT]",
	Short: "Approximate the pronunciation of translated text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("language")

		cfg, log, err := loadOptionalRuntime(false)
		if err != nil {
			return err
		}

		orchestrator := app.NewOrchestrator(cfg, log)
		if !orchestrator.IsSupported(lang) {
			return fmt.Errorf("unsupported language: %s. Supported languages: %s",
				lang, strings.Join(orchestrator.SupportedLanguages(), ", "))
		}

		pronunciation, err := orchestrator.Pronounce(strings.Join(args, " "), lang)
		if err != nil {
			return err
		}
		cmd.Println(pronunciation)
		return nil
	},
}

// languagesCmd represents the languages command
var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported target languages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadOptionalRuntime(false)
		if err != nil {
			return err
		}

		languages := app.NewOrchestrator(cfg, log).SupportedLanguages()
		for _, l := range languages {
			cmd.Println(l)
		}
		cmd.Printf("\n%d languages\n", len(languages))
		return nil
	},
}

// loadOptionalRuntime falls back to environment-only configuration when no
// config file exists, unless a store is needed.
func loadOptionalRuntime(needStore bool) (*config.Config, *logrus.Logger, error) {
	if needStore {
		return loadRuntime()
	}

	cfg, err := config.NewConfig()
	if err != nil {
		cfg = config.FromEnv()
	}
	return cfg, app.NewLogger(cfg), nil
}

func init() {
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(pronounceCmd)
	rootCmd.AddCommand(languagesCmd)

	translateCmd.Flags().StringP("to", "t", "", "Target language, e.g. hindi (required)")
	translateCmd.Flags().StringP("method", "m", "", "Preferred provider: nllb, huggingface or aws (default huggingface)")
	translateCmd.Flags().Bool("save", false, "Save the translation to history")
	translateCmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	_ = translateCmd.MarkFlagRequired("to")

	pronounceCmd.Flags().StringP("language", "l", "", "Language of the text (required)")
	_ = pronounceCmd.MarkFlagRequired("language")
}
