// Command pantry runs the household inventory tracker: the web page, the
// Telegram bot, or one-shot CLI operations against the same spreadsheet.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/yourusername/pantry-bot/pkg/logger"
)

var (
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pantry",
	Short: "Household inventory tracker backed by a spreadsheet",
	Long: `pantry keeps a household inventory in one Google Sheets worksheet.

Subcommands:
  web     - serve the inventory page
  bot     - run the Telegram bot
  serve   - web and bot together
  list    - print the stock table
  export  - write a CSV or XLSX export
  scan    - read a receipt image and optionally apply it`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := os.Getenv("LOG_LEVEL")
		if verbose {
			level = "debug"
		}
		logger.InitWithLevel(level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Export format (csv|xlsx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: generated name)")
	scanCmd.Flags().BoolVar(&scanApply, "apply", false, "Apply the matched quantities to the sheet")
	scanCmd.Flags().StringVar(&scanMime, "mime", "", "Image MIME type (default: detected)")

	rootCmd.AddCommand(webCmd, botCmd, serveCmd, listCmd, exportCmd, scanCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
