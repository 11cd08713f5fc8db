// Package csvimport turns an uploaded CSV file into validated list item
// rows and submits the valid ones in a single batch.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/foxzi/campaign-console/internal/api"
	"github.com/foxzi/campaign-console/internal/email"
	"github.com/foxzi/campaign-console/internal/metrics"
	"github.com/foxzi/campaign-console/internal/models"
)

// ErrNoValidRows is returned when a file has no row worth submitting
var ErrNoValidRows = errors.New("no valid rows to upload")

// FormatError means the file is not usable CSV or lacks an email column
type FormatError struct {
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid CSV at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("invalid CSV: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// UploadError wraps a failed batch upload
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return "upload failed: " + e.Err.Error()
}

func (e *UploadError) Unwrap() error { return e.Err }

var errNoEmailColumn = errors.New("no email column in header")

// Row is one data row of the file
type Row struct {
	Line      int // 1-based line in the file
	Email     string
	Name      string
	Variables map[string]string
	Status    models.ItemStatus
	Reason    string
}

// Batch holds the parsed rows in file order
type Batch struct {
	Rows []Row
}

// Counts returns the number of rows per status
func (b *Batch) Counts() map[models.ItemStatus]int {
	counts := map[models.ItemStatus]int{
		models.ItemValid:     0,
		models.ItemDuplicate: 0,
		models.ItemInvalid:   0,
	}
	for _, row := range b.Rows {
		counts[row.Status]++
	}
	return counts
}

// Valid returns the drafts that will be submitted
func (b *Batch) Valid() []models.ListItemDraft {
	var drafts []models.ListItemDraft
	for _, row := range b.Rows {
		if row.Status != models.ItemValid {
			continue
		}
		drafts = append(drafts, models.ListItemDraft{
			Email:     row.Email,
			Name:      row.Name,
			Variables: row.Variables,
		})
	}
	return drafts
}

// Parse reads a CSV file with a header row. The email column is required
// and name is optional, both matched case-insensitively; any other column
// becomes a per-row variable. A UTF-8 or UTF-16 byte order mark is
// honoured. Every row is classified before Parse returns.
func Parse(r io.Reader) (*Batch, error) {
	batch, err := parse(r)
	if err != nil {
		metrics.IncCSVImport("format_error")
		return nil, err
	}
	return batch, nil
}

func parse(r io.Reader) (*Batch, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &FormatError{Err: errNoEmailColumn}
	}
	if err != nil {
		return nil, formatError(err)
	}

	emailIdx, nameIdx := -1, -1
	extra := make(map[int]string)
	for i, col := range header {
		col = strings.TrimSpace(col)
		switch strings.ToLower(col) {
		case "email":
			if emailIdx < 0 {
				emailIdx = i
			}
		case "name":
			if nameIdx < 0 {
				nameIdx = i
			}
		default:
			if col != "" {
				extra[i] = col
			}
		}
	}
	if emailIdx < 0 {
		return nil, &FormatError{Line: 1, Err: errNoEmailColumn}
	}

	batch := &Batch{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatError(err)
		}
		line, _ := reader.FieldPos(0)

		row := Row{
			Line:  line,
			Email: field(record, emailIdx),
			Name:  field(record, nameIdx),
		}
		for i, key := range extra {
			if v := field(record, i); v != "" {
				if row.Variables == nil {
					row.Variables = make(map[string]string)
				}
				row.Variables[key] = v
			}
		}
		batch.Rows = append(batch.Rows, row)
	}

	classify(batch.Rows)
	return batch, nil
}

// classify assigns statuses in file order. First match wins: invalid
// address, then an address already seen on a valid row, then valid.
func classify(rows []Row) {
	seen := make(map[string]bool)
	for i := range rows {
		row := &rows[i]
		switch {
		case row.Email == "":
			row.Status = models.ItemInvalid
			row.Reason = "missing email"
		case !email.IsValid(row.Email):
			row.Status = models.ItemInvalid
			row.Reason = "invalid email"
		case seen[email.Key(row.Email)]:
			row.Status = models.ItemDuplicate
			row.Reason = "duplicate in file"
		default:
			row.Status = models.ItemValid
			seen[email.Key(row.Email)] = true
		}
	}
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func formatError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &FormatError{Line: parseErr.Line, Err: parseErr.Err}
	}
	return &FormatError{Err: err}
}

// Uploader submits validated rows to a list
type Uploader interface {
	UploadListItems(ctx context.Context, listID int64, items []models.ListItemDraft) (*api.UploadResponse, error)
}

// Importer submits parsed batches
type Importer struct {
	uploader Uploader
	logger   *slog.Logger
}

func NewImporter(uploader Uploader, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		uploader: uploader,
		logger:   logger.With("component", "csvimport"),
	}
}

// Submit uploads the valid rows of batch to a list in one call. With no
// valid rows it returns ErrNoValidRows without touching the network.
func (im *Importer) Submit(ctx context.Context, listID int64, batch *Batch) (*api.UploadResponse, error) {
	counts := batch.Counts()
	for status, n := range counts {
		metrics.AddCSVRows(string(status), n)
	}

	drafts := batch.Valid()
	if len(drafts) == 0 {
		metrics.IncCSVImport("no_valid_rows")
		return nil, ErrNoValidRows
	}

	resp, err := im.uploader.UploadListItems(ctx, listID, drafts)
	if err != nil {
		metrics.IncCSVImport("upload_error")
		im.logger.Error("upload failed", "list_id", listID, "rows", len(drafts), "error", err)
		return nil, &UploadError{Err: err}
	}

	metrics.IncCSVImport("success")
	im.logger.Info("rows uploaded",
		"list_id", listID,
		"valid", counts[models.ItemValid],
		"duplicate", counts[models.ItemDuplicate],
		"invalid", counts[models.ItemInvalid],
		"inserted", resp.Inserted,
		"skipped", resp.Skipped,
	)
	return resp, nil
}
