package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/yourusername/pantry-bot/internal/usecase"
)

var (
	exportFormat string
	exportOutput string
	scanApply    bool
	scanMime     string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stock table, shopping list and expiry panel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return runList(cmd.Context(), a.inventory, cmd.OutOrStdout())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the inventory as CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		path, err := runExport(cmd.Context(), a.inventory, exportFormat, exportOutput)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📤 %s\n", path)
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Read a receipt image and show (or --apply) the matched items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		image, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("rasm o'qilmadi: %w", err)
		}
		return runScan(cmd.Context(), a.inventory, image, scanMime, scanApply, cmd.OutOrStdout())
	},
}

func runList(ctx context.Context, inv usecase.InventoryUseCase, out io.Writer) error {
	snap, err := inv.Snapshot(ctx, nil)
	if err != nil {
		return err
	}

	rows := [][]string{{"", "name", "category", "reserve", "threshold", "status", "expiry"}}
	for _, item := range snap.Sorted {
		rows = append(rows, []string{
			item.Icon,
			item.Name,
			item.Category,
			fmt.Sprint(item.ReserveCount),
			fmt.Sprint(item.RestockThreshold),
			string(usecase.Status(item)),
			item.ExpiryDate,
		})
	}
	writeTable(out, rows)

	fmt.Fprintf(out, "\n🛒 shopping list (%d)\n", len(snap.ShoppingList))
	for _, e := range snap.ShoppingList {
		fmt.Fprintf(out, "  - %s (%s, need %d)\n", e.Item.DisplayName(), e.Status, e.Shortage)
	}
	if len(snap.Expiry) > 0 {
		fmt.Fprintln(out, "\n⏰ expiry")
		for _, e := range snap.Expiry {
			fmt.Fprintf(out, "  - %s %s (%d days, %s)\n", e.Item.DisplayName(), e.Item.ExpiryDate, e.DaysLeft, e.Status)
		}
	}
	return nil
}

// writeTable pads by display width so CJK names line up.
func writeTable(out io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func runExport(ctx context.Context, inv usecase.InventoryUseCase, format, output string) (string, error) {
	data, filename, err := inv.Export(ctx, format)
	if err != nil {
		return "", err
	}
	if output == "" {
		output = filename
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return "", fmt.Errorf("eksport yozilmadi: %w", err)
	}
	return output, nil
}

func runScan(ctx context.Context, inv usecase.InventoryUseCase, image []byte, mime string, apply bool, out io.Writer) error {
	if mime == "" {
		mime = http.DetectContentType(image)
	}
	preview, err := inv.PreviewReceipt(ctx, image, mime)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "🧾 OCR:")
	for _, line := range strings.Split(preview.Text, "\n") {
		fmt.Fprintln(out, "  | "+line)
	}
	if len(preview.Matches) == 0 {
		fmt.Fprintln(out, "no matching items")
		return nil
	}
	for _, m := range preview.Matches {
		fmt.Fprintf(out, "  + %s x%d\n", m.Name, m.Quantity)
	}
	if !apply {
		fmt.Fprintln(out, "(dry run, pass --apply to update the sheet)")
		return nil
	}
	res, err := inv.ApplyReceipt(ctx, preview.Matches)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ applied %d, skipped %d\n", len(res.Applied), len(res.Skipped))
	return nil
}
