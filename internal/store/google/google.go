// Package google implements the row store on a Google Sheets worksheet.
//
// Each record occupies one row in columns A:I; column A holds the opaque
// row ID so identity survives manual edits and concurrent inserts.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendlog/internal/core"
	"spendlog/internal/store"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	// Numeric sheet ID, resolved lazily; needed for row deletion.
	sheetID    int64
	hasSheetID bool
}

var _ store.RowStore = (*Client)(nil)

// Config carries what the client needs; credentials are either inline
// JSON or a file path (file wins when both are set).
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "expenses"
	}

	credentialsJSON, err := resolveCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}
	if err := c.ensureHeaders(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func resolveCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		data, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// ensureHeaders writes the header row when the sheet is empty or the
// first row does not match the expected columns.
func (c *Client) ensureHeaders(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:I1", c.sheetName)
	resp, err := c.readValues(ctx, rng)
	if err != nil {
		return err
	}
	if len(resp.Values) > 0 && headerMatches(resp.Values[0]) {
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]any{headerRow()}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: write headers: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// readValues fetches a range with a single immediate retry, since the
// Sheets API occasionally drops a request.
func (c *Client) readValues(ctx context.Context, rng string) (*gsheet.ValueRange, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrStoreUnavailable, rng, err)
	}
	return resp, nil
}

func (c *Client) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	rec.RowID = uuid.NewString()
	if err := c.writeRow(ctx, rec, 0); err != nil {
		return "", err
	}
	return rec.RowID, nil
}

// writeRow writes the record at rowNum (1-based); rowNum 0 means append
// after the last occupied row.
func (c *Client) writeRow(ctx context.Context, rec core.ExpenseRecord, rowNum int) error {
	if rowNum == 0 {
		resp, err := c.readValues(ctx, fmt.Sprintf("%s!A:A", c.sheetName))
		if err != nil {
			return err
		}
		rowNum = len(resp.Values) + 1
	}
	rng := fmt.Sprintf("%s!A%d:I%d", c.sheetName, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{recordToRow(rec)}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", core.ErrStoreUnavailable, rng, err)
	}
	return nil
}

func (c *Client) List(ctx context.Context, userID string, f store.Filter) ([]core.ExpenseRecord, error) {
	rows, _, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.ExpenseRecord
	for _, rec := range rows {
		if rec.UserID != userID || !f.Matches(rec) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].RowID < out[j].RowID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (c *Client) Get(ctx context.Context, userID, rowID string) (core.ExpenseRecord, error) {
	rec, _, err := c.find(ctx, userID, rowID)
	return rec, err
}

func (c *Client) Update(ctx context.Context, userID, rowID string, patch core.FieldPatch) error {
	rec, rowNum, err := c.find(ctx, userID, rowID)
	if err != nil {
		return err
	}
	updated := rec.Apply(patch)
	if err := updated.Validate(); err != nil {
		return err
	}
	return c.writeRow(ctx, updated, rowNum)
}

func (c *Client) Delete(ctx context.Context, userID, rowID string) error {
	_, rowNum, err := c.find(ctx, userID, rowID)
	if err != nil {
		return err
	}
	return c.deleteRowNum(ctx, rowNum)
}

// SyncRecord upserts a record carrying an existing row ID. Used by the
// sheet mirror worker; unlike Append it preserves the caller's ID.
func (c *Client) SyncRecord(ctx context.Context, rec core.ExpenseRecord) error {
	if rec.RowID == "" {
		return errors.New("sync record without row id")
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	_, rowNum, err := c.find(ctx, rec.UserID, rec.RowID)
	switch {
	case err == nil:
		return c.writeRow(ctx, rec, rowNum)
	case errors.Is(err, core.ErrNotFound):
		return c.writeRow(ctx, rec, 0)
	default:
		return err
	}
}

// RemoveRow deletes a row by ID alone, regardless of user. Used by the
// sheet mirror worker, which only carries the row ID.
func (c *Client) RemoveRow(ctx context.Context, rowID string) error {
	rows, nums, err := c.scan(ctx)
	if err != nil {
		return err
	}
	for i, rec := range rows {
		if rec.RowID == rowID {
			return c.deleteRowNum(ctx, nums[i])
		}
	}
	return core.ErrNotFound
}

func (c *Client) deleteRowNum(ctx context.Context, rowNum int) error {
	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: delete row %d: %v", core.ErrStoreUnavailable, rowNum, err)
	}
	return nil
}

func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	if c.hasSheetID {
		return c.sheetID, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("%w: get spreadsheet: %v", core.ErrStoreUnavailable, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			c.sheetID = sh.Properties.SheetId
			c.hasSheetID = true
			return c.sheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}

// scan reads all data rows and returns parsed records alongside their
// 1-based sheet row numbers. Unparseable rows are skipped; a spreadsheet
// is a shared surface and manual edits must not break reads.
func (c *Client) scan(ctx context.Context) ([]core.ExpenseRecord, []int, error) {
	resp, err := c.readValues(ctx, fmt.Sprintf("%s!A2:I", c.sheetName))
	if err != nil {
		return nil, nil, err
	}
	var (
		recs []core.ExpenseRecord
		nums []int
	)
	for i, row := range resp.Values {
		rec, ok := rowToRecord(row)
		if !ok {
			continue
		}
		recs = append(recs, rec)
		nums = append(nums, i+2)
	}
	return recs, nums, nil
}

func (c *Client) find(ctx context.Context, userID, rowID string) (core.ExpenseRecord, int, error) {
	rows, nums, err := c.scan(ctx)
	if err != nil {
		return core.ExpenseRecord{}, 0, err
	}
	for i, rec := range rows {
		if rec.RowID == rowID {
			if rec.UserID != userID {
				return core.ExpenseRecord{}, 0, core.ErrNotFound
			}
			return rec, nums[i], nil
		}
	}
	return core.ExpenseRecord{}, 0, core.ErrNotFound
}
