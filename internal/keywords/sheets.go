package keywords

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jmyang-dev/ainews-harvester/internal/logger"
)

const (
	keywordReadRange  = "Keywords!A2:H"
	statisticsRange   = "Statistics!A:E"
	usageColumnLetter = "H"

	// Keyword sheet columns: ID, Keyword, Category, Priority, Active,
	// CreatedAt, UpdatedAt, UsageCount.
	colKeyword  = 1
	colPriority = 3
	colActive   = 4
	colUsage    = 7
)

// SheetsSource loads the active keyword list from a Google Sheets worksheet
// and writes usage statistics back to it.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
	log           logger.Logger
}

// NewSheetsSource builds a live keyword source from a service-account
// credentials file and a spreadsheet id.
func NewSheetsSource(ctx context.Context, credentialsFile, spreadsheetID string, log logger.Logger) (*SheetsSource, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, fmt.Errorf("spreadsheet id is empty")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsSource{svc: svc, spreadsheetID: spreadsheetID, log: log}, nil
}

// SearchKeywords returns active keywords whose priority is at least
// minPriority, in sheet order.
func (s *SheetsSource) SearchKeywords(ctx context.Context, minPriority int) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, keywordReadRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read keyword sheet: %w", err)
	}

	var kws []string
	for _, row := range resp.Values {
		kw, ok := parseKeywordRow(row, minPriority)
		if !ok {
			continue
		}
		kws = append(kws, kw)
	}

	s.log.InfoObj("loaded keywords from sheet", "keyword_sheet_load", map[string]any{
		"count": len(kws),
	})
	return kws, nil
}

// parseKeywordRow extracts the keyword from a sheet row, applying the active
// flag and priority threshold. Malformed rows are skipped.
func parseKeywordRow(row []any, minPriority int) (string, bool) {
	if len(row) <= colActive {
		return "", false
	}
	if !strings.EqualFold(cellString(row[colActive]), "TRUE") {
		return "", false
	}
	if cellInt(row[colPriority]) < minPriority {
		return "", false
	}
	kw := strings.TrimSpace(cellString(row[colKeyword]))
	return kw, kw != ""
}

// UpdateUsage bumps the keyword's usage counter in the keyword sheet and
// appends a row to the statistics sheet.
func (s *SheetsSource) UpdateUsage(ctx context.Context, keyword string, matchedArticles int) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, keywordReadRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read keyword sheet: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) <= colKeyword || cellString(row[colKeyword]) != keyword {
			continue
		}

		usage := 0
		if len(row) > colUsage {
			usage = cellInt(row[colUsage])
		}

		// Row 1 is the header; data rows start at sheet row 2.
		cell := fmt.Sprintf("Keywords!%s%d", usageColumnLetter, i+2)
		vr := &sheets.ValueRange{Values: [][]any{{usage + 1}}}
		if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, cell, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("update keyword usage: %w", err)
		}
		break
	}

	statsRow := &sheets.ValueRange{Values: [][]any{{
		time.Now().Format("2006-01-02"),
		keyword,
		1,
		matchedArticles,
		time.Now().Format("15:04:05"),
	}}}
	if _, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, statisticsRange, statsRow).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("append usage statistics: %w", err)
	}
	return nil
}

func cellString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func cellInt(v any) int {
	switch t := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	case float64:
		return int(t)
	default:
		return 0
	}
}
