package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ricavi/internal/core"
)

// Client mirrors monthly revenue tables into a Google spreadsheet, one tab
// per month named by the period key.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu    sync.Mutex
	known map[string]bool // tabs seen or created by this client
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		known:         make(map[string]bool),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteMonth replaces the content of the month's tab with values,
// creating the tab when it does not exist yet.
func (c *Client) WriteMonth(ctx context.Context, p core.Period, values [][]any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	title := p.Key()

	if err := c.ensureSheet(ctx, title); err != nil {
		return err
	}

	clearRange := a1Range(title, "A:Z")
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rng := a1Range(title, "A1")
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	c.mu.Lock()
	seen := c.known[title]
	c.mu.Unlock()
	if seen {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	titles := sheetTitles(ss)

	if !titles[title] {
		req := &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{
				AddSheet: &gsheet.AddSheetRequest{
					Properties: &gsheet.SheetProperties{Title: title},
				},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %s: %w", title, err)
		}
		slog.InfoContext(ctx, "Created month sheet", "sheet", title)
		titles[title] = true
	}

	c.mu.Lock()
	for t := range titles {
		c.known[t] = true
	}
	c.mu.Unlock()
	return nil
}

func sheetTitles(ss *gsheet.Spreadsheet) map[string]bool {
	out := make(map[string]bool)
	if ss == nil {
		return out
	}
	for _, sh := range ss.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		out[sh.Properties.Title] = true
	}
	return out
}

// a1Range builds an A1 range with the sheet title quoted, e.g. "'2025-03'!A1".
func a1Range(title, cells string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + cells
}
