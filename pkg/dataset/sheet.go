package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/softloud/sig-vis/pkg/tabular"
)

var ErrEmptySpreadsheet = errors.New("spreadsheet id cannot be empty")

const defaultSheetEndpoint = "https://sheets.googleapis.com/v4/spreadsheets"

// SheetConfig describes where the two tables live in a spreadsheet.
type SheetConfig struct {
	SpreadsheetID string
	EdgesRange    string // e.g. "edges!A:E"
	NodesRange    string // e.g. "nodes!A:B"
	Endpoint      string // defaults to the Google Sheets API
	Account       ServiceAccount
}

// SheetSource fetches the tables from a sheets-style values API using
// a service-account bearer token.
type SheetSource struct {
	cfg    SheetConfig
	tokens *tokenSource
	client *http.Client
}

// NewSheetSource validates the config and prepares the token source.
// No network traffic happens until the first table fetch.
func NewSheetSource(cfg SheetConfig) (*SheetSource, error) {
	if cfg.SpreadsheetID == "" {
		return nil, ErrEmptySpreadsheet
	}
	if cfg.EdgesRange == "" {
		cfg.EdgesRange = "edges"
	}
	if cfg.NodesRange == "" {
		cfg.NodesRange = "nodes"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultSheetEndpoint
	}

	client := &http.Client{Timeout: 30 * time.Second}
	tokens, err := newTokenSource(cfg.Account, client)
	if err != nil {
		return nil, err
	}
	return &SheetSource{cfg: cfg, tokens: tokens, client: client}, nil
}

// EdgeTable fetches the edge list range.
func (s *SheetSource) EdgeTable(ctx context.Context) (*tabular.Table, error) {
	return s.fetchRange(ctx, s.cfg.EdgesRange)
}

// NodeTable fetches the node attribute range.
func (s *SheetSource) NodeTable(ctx context.Context) (*tabular.Table, error) {
	return s.fetchRange(ctx, s.cfg.NodesRange)
}

func (s *SheetSource) fetchRange(ctx context.Context, valueRange string) (*tabular.Table, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/values/%s",
		s.cfg.Endpoint,
		url.PathEscape(s.cfg.SpreadsheetID),
		url.PathEscape(valueRange),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dataset: sheet request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset: sheet fetch %s: %w", valueRange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset: sheet fetch %s: status %d: %w",
			valueRange, resp.StatusCode, ErrBadResponse)
	}

	var body struct {
		Range  string  `json:"range"`
		Values [][]any `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("dataset: sheet decode %s: %w", valueRange, err)
	}
	if len(body.Values) == 0 {
		return nil, fmt.Errorf("dataset: sheet range %s has no header row: %w",
			valueRange, ErrBadResponse)
	}

	records := make([][]string, len(body.Values))
	for i, row := range body.Values {
		records[i] = make([]string, len(row))
		for j, cell := range row {
			records[i][j] = stringifyCell(cell)
		}
	}
	return tabular.FromRecords(records)
}

// stringifyCell flattens the handful of JSON types a values API can
// return into table cells.
func stringifyCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprintf("%v", c)
	}
}
