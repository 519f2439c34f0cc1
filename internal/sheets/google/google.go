package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"joblog/internal/core"
	"joblog/internal/log"
	ports "joblog/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options selects the spreadsheet and tabs the client writes to.
type Options struct {
	SpreadsheetID string
	// JobsSheet holds the mirrored job table (default "Jobs").
	JobsSheet string
	// WeeklyBase is prefixed with the report year, e.g. "2025 Weekly".
	WeeklyBase string

	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	jobsSheet     string
	weeklyBase    string
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.Sink = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, opts, logger)
}

// NewWithService wraps an existing service, e.g. one pointed at a test server.
func NewWithService(svc *gsheet.Service, opts Options, logger *log.Logger) (*Client, error) {
	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		jobsSheet:     opts.JobsSheet,
		weeklyBase:    opts.WeeklyBase,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func normalize(opts Options) (Options, error) {
	opts.SpreadsheetID = strings.TrimSpace(opts.SpreadsheetID)
	if opts.SpreadsheetID == "" {
		return opts, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(opts.JobsSheet) == "" {
		opts.JobsSheet = "Jobs"
	}
	if strings.TrimSpace(opts.WeeklyBase) == "" {
		opts.WeeklyBase = "Weekly"
	}
	return opts, nil
}

// newSheetsService reads service account credentials inline, from a file or
// from GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsJSON, err := readCredentials(opts)
	if err != nil {
		return nil, err
	}
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func readCredentials(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// MirrorJobs rewrites the jobs tab with the given records, oldest first.
func (c *Client) MirrorJobs(ctx context.Context, jobs []core.JobRecord) (string, error) {
	rows := ports.JobRows(core.SortByDate(jobs, core.Ascending))
	ref, err := c.replace(ctx, c.jobsSheet, "L", inputRaw, rows)
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Jobs mirrored to sheet",
		log.FieldOperation, log.OpMirror,
		log.FieldJobCount, len(jobs),
		log.FieldSheetsRef, ref)
	return ref, nil
}

// WriteWeekly rewrites the weekly tab for the report's year.
func (c *Client) WriteWeekly(ctx context.Context, report core.WeeklyReport) (string, error) {
	year := report.AsOf.Year()
	if report.AsOf.IsZero() {
		year = time.Now().Year()
	}
	sheet := yearPrefixedName(c.weeklyBase, year)
	ref, err := c.replace(ctx, sheet, "D", inputUserEntered, ports.WeeklyRows(report))
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "Weekly report written to sheet",
		log.FieldOperation, log.OpSummary,
		"weeks", len(report.Weeks),
		log.FieldSheetsRef, ref)
	return ref, nil
}

// Value input options for values.update. The jobs tab carries free text typed
// by users, so it is written RAW and a leading '=' never becomes a formula.
// The weekly tab holds only generated values and keeps sheet number parsing.
const (
	inputRaw         = "RAW"
	inputUserEntered = "USER_ENTERED"
)

// replace clears columns A..lastCol of sheet and writes rows from A1.
func (c *Client) replace(ctx context.Context, sheet, lastCol, inputOption string, rows [][]any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:%s", sheet, lastCol)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("clear %s: %w", clearRange, err)
	}

	writeRange := fmt.Sprintf("%s!A1:%s%d", sheet, lastCol, len(rows))
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: rows}).
		ValueInputOption(inputOption).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", writeRange, err)
	}
	return writeRange, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
