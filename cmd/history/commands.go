package history

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/lingopad/internal/model"
	"github.com/Taichi-iskw/lingopad/internal/service/history"
)

const commandTimeout = 30 * time.Second

// NewHistoryCommand creates the main history command.
// A nil service makes every subcommand open the configured store itself.
func NewHistoryCommand(service history.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved translations",
		Long:  `List, show, delete, and clear saved translations, and print store statistics`,
	}

	cmd.AddCommand(NewListCommand(service))
	cmd.AddCommand(NewGetCommand(service))
	cmd.AddCommand(NewDeleteCommand(service))
	cmd.AddCommand(NewClearCommand(service))
	cmd.AddCommand(NewStatsCommand(service))

	return cmd
}

// NewListCommand creates the list command
func NewListCommand(service history.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved translations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			language, _ := cmd.Flags().GetString("language")
			search, _ := cmd.Flags().GetString("search")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			formatter, err := GetFormatter(format)
			if err != nil {
				return err
			}
			if limit < 0 || offset < 0 {
				return fmt.Errorf("limit and offset must be non-negative")
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			svc, cleanup, err := resolveService(ctx, service)
			if err != nil {
				return err
			}
			defer cleanup()

			records, err := svc.List(ctx, history.Filter{
				Language: language,
				Search:   search,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				return fmt.Errorf("failed to list translations: %w", err)
			}

			output, err := formatter.Format(records)
			if err != nil {
				return err
			}
			cmd.Print(output)
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	cmd.Flags().StringP("language", "l", "", "Only show translations into this language")
	cmd.Flags().StringP("search", "s", "", "Only show translations containing this text")
	cmd.Flags().Int("limit", 20, "Maximum number of translations to show")
	cmd.Flags().Int("offset", 0, "Number of translations to skip")

	return cmd
}

// NewGetCommand creates the get command
func NewGetCommand(service history.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [TRANSLATION_ID]",
		Short: "Show a saved translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			formatter, err := GetFormatter(format)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			svc, cleanup, err := resolveService(ctx, service)
			if err != nil {
				return err
			}
			defer cleanup()

			record, err := svc.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get translation: %w", err)
			}

			output, err := formatter.Format([]*model.TranslationRecord{record})
			if err != nil {
				return err
			}
			cmd.Print(output)
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")

	return cmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand(service history.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [TRANSLATION_ID]",
		Short: "Delete a saved translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			translationID := args[0]

			force, _ := cmd.Flags().GetBool("force")
			if !force && !confirm(cmd, fmt.Sprintf("Are you sure you want to delete translation %s? (y/N): ", translationID)) {
				cmd.Println("Deletion cancelled")
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			svc, cleanup, err := resolveService(ctx, service)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Delete(ctx, translationID); err != nil {
				return fmt.Errorf("failed to delete translation: %w", err)
			}

			cmd.Printf("Translation %s deleted successfully\n", translationID)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Force deletion without confirmation")

	return cmd
}

// NewClearCommand creates the clear command
func NewClearCommand(service history.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if !force && !confirm(cmd, "Are you sure you want to delete ALL saved translations? (y/N): ") {
				cmd.Println("Clear cancelled")
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			svc, cleanup, err := resolveService(ctx, service)
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := svc.Clear(ctx)
			if err != nil {
				return fmt.Errorf("failed to clear translations: %w", err)
			}

			cmd.Printf("Cleared %d translations\n", deleted)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Force deletion without confirmation")

	return cmd
}

// NewStatsCommand creates the stats command
func NewStatsCommand(service history.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show saved translation counts per language and method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			formatter, err := GetFormatter(format)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			svc, cleanup, err := resolveService(ctx, service)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := svc.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to get statistics: %w", err)
			}

			output, err := formatter.FormatStats(stats)
			if err != nil {
				return err
			}
			cmd.Print(output)
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")

	return cmd
}

// confirm prompts on the command's output and reads one answer from its input
func confirm(cmd *cobra.Command, prompt string) bool {
	cmd.Print(prompt)

	response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.TrimSpace(response) {
	case "y", "Y", "yes":
		return true
	default:
		return false
	}
}
