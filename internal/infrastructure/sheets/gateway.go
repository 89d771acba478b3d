// Package sheets is the Google Sheets store gateway: one worksheet holds the
// whole inventory table, read in full and rewritten in full.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/yourusername/pantry-bot/internal/domain/constants"
	"github.com/yourusername/pantry-bot/internal/domain/entity"
	"github.com/yourusername/pantry-bot/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// WriteMode how WriteAll replaces the sheet contents.
type WriteMode string

const (
	// WriteModeOverwrite writes header + rows first, then clears the rows below.
	WriteModeOverwrite WriteMode = "overwrite"
	// WriteModeClear clears the worksheet, then writes. Readers in between see
	// an empty sheet and a crash in between loses the table.
	WriteModeClear WriteMode = "clear"
)

// Config gateway sozlamalari
type Config struct {
	SpreadsheetID string
	Worksheet     string
	WriteMode     WriteMode
	Credentials   []byte
	Source        string // credentials manbasi (diagnostika uchun)

	// ClientOptions extra options (tests point the client at a fake server).
	ClientOptions []option.ClientOption
}

// Gateway Google Sheets bilan ishlovchi InventoryGateway
type Gateway struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	worksheet     string
	mode          WriteMode
	diag          entity.CredentialDiagnostics
}

// Connect opens the Sheets service and checks that the spreadsheet and the
// worksheet exist.
func Connect(ctx context.Context, cfg Config) (*Gateway, error) {
	diag := entity.CredentialDiagnostics{Source: cfg.Source}
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, entity.NewGatewayError("connect", entity.ErrNotFound, fmt.Errorf("spreadsheet id is empty"))
	}

	opts := append([]option.ClientOption{}, cfg.ClientOptions...)
	if len(cfg.ClientOptions) == 0 {
		sa, err := entity.ParseServiceAccount(cfg.Credentials)
		if err != nil {
			return nil, entity.NewGatewayError("connect", entity.ErrAuth, err)
		}
		diag.Loaded = true
		diag.Type = sa.Type
		diag.ClientEmail = sa.ClientEmail
		diag.ProjectID = sa.ProjectID
		opts = append(opts,
			option.WithCredentialsJSON(cfg.Credentials),
			option.WithScopes(constants.SheetsScope),
		)
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, entity.NewGatewayError("connect", entity.ErrAuth, err)
	}

	g := newGateway(svc, cfg, diag)
	if err := g.checkWorksheet(ctx); err != nil {
		return nil, err
	}
	logger.InfoLogger.Printf("✅ Google Sheets ulandi (spreadsheet=%s, sheet=%s, mode=%s)", g.spreadsheetID, g.worksheet, g.mode)
	return g, nil
}

func newGateway(svc *sheetsapi.Service, cfg Config, diag entity.CredentialDiagnostics) *Gateway {
	ws := strings.TrimSpace(cfg.Worksheet)
	if ws == "" {
		ws = constants.DefaultWorksheet
	}
	mode := cfg.WriteMode
	if mode != WriteModeClear {
		mode = WriteModeOverwrite
	}
	return &Gateway{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		worksheet:     ws,
		mode:          mode,
		diag:          diag,
	}
}

// Diagnostics credential holati (maxfiy kalitsiz)
func (g *Gateway) Diagnostics() entity.CredentialDiagnostics {
	return g.diag
}

func (g *Gateway) checkWorksheet(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.SheetRequestTimeout)
	defer cancel()

	ss, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return classifyAPIError("connect", entity.ErrConnect, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == g.worksheet {
			return nil
		}
	}
	return entity.NewGatewayError("connect", entity.ErrNotFound, fmt.Errorf("worksheet %q not found", g.worksheet))
}

// ReadAll butun varaqni o'qib jadvalga aylantiradi
func (g *Gateway) ReadAll(ctx context.Context) (entity.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.SheetRequestTimeout)
	defer cancel()

	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.sheetRange("")).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return entity.Table{}, classifyAPIError("read", entity.ErrRead, err)
	}
	table, err := DecodeValues(interfaceRowsToStrings(resp.Values))
	if err != nil {
		return entity.Table{}, entity.NewGatewayError("read", entity.ErrRead, err)
	}
	return table, nil
}

// WriteAll replaces the sheet with header + all rows.
func (g *Gateway) WriteAll(ctx context.Context, table entity.Table) error {
	ctx, cancel := context.WithTimeout(ctx, constants.SheetRequestTimeout)
	defer cancel()

	values := EncodeValues(table)
	if g.mode == WriteModeClear {
		if _, err := g.svc.Spreadsheets.Values.Clear(g.spreadsheetID, g.sheetRange(""), &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return classifyAPIError("write", entity.ErrWrite, err)
		}
		// Known hazard: the sheet is empty until the update below lands.
		return g.update(ctx, values)
	}

	if err := g.update(ctx, values); err != nil {
		return err
	}
	tail := g.sheetRange(fmt.Sprintf("A%d:%s", len(values)+1, columnLetter(max(len(values[0]), 26))))
	if _, err := g.svc.Spreadsheets.Values.Clear(g.spreadsheetID, tail, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return classifyAPIError("write", entity.ErrWrite, err)
	}
	return nil
}

func (g *Gateway) update(ctx context.Context, values [][]interface{}) error {
	vr := &sheetsapi.ValueRange{Values: values}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, g.sheetRange("A1"), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return classifyAPIError("write", entity.ErrWrite, err)
	}
	return nil
}

func (g *Gateway) sheetRange(cells string) string {
	quoted := "'" + strings.ReplaceAll(g.worksheet, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

// columnLetter 1 -> A, 27 -> AA
func columnLetter(n int) string {
	if n <= 0 {
		return "A"
	}
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// classifyAPIError maps Google API failures onto the error taxonomy.
func classifyAPIError(op string, fallback error, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return entity.NewGatewayError(op, entity.ErrAuth, err)
		case http.StatusNotFound:
			return entity.NewGatewayError(op, entity.ErrNotFound, err)
		case http.StatusBadRequest:
			if strings.Contains(strings.ToLower(gerr.Message), "unable to parse range") {
				return entity.NewGatewayError(op, entity.ErrNotFound, err)
			}
		}
		return entity.NewGatewayError(op, fallback, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return entity.NewGatewayError(op, entity.ErrConnect, err)
	}
	return entity.NewGatewayError(op, fallback, err)
}
