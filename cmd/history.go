package cmd

import (
	"github.com/Taichi-iskw/lingopad/cmd/history"
)

func init() {
	// subcommands open the configured store on demand
	rootCmd.AddCommand(history.NewHistoryCommand(nil))
}
