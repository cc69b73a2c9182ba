package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/rentboard/internal/database"
	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/utils"
)

const dateLayout = "2006-01-02"

// ErrDuplicateBooking is returned when a batch repeats a confirmation code
var ErrDuplicateBooking = errors.New("duplicate confirmation code")

// ImportResult describes one stored import batch
type ImportResult struct {
	ImportedAt  time.Time `json:"imported_at"`
	BatchID     string    `json:"batch_id"`
	Source      string    `json:"source"`
	RecordCount int       `json:"record_count"`
	ErrorCount  int       `json:"error_count"`
}

// Repository stores the most recent import of booking records.
// Each import replaces the previous batch atomically.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a booking repository on the bookings database
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db.Conn(),
		log: log.With().Str("repo", "bookings").Logger(),
	}
}

// ReplaceAll stores records as a new batch and drops every earlier batch.
// parseErrors is the number of input rows that never became records; it is
// kept on the batch for reporting.
func (r *Repository) ReplaceAll(ctx context.Context, source string, records []domain.BookingRecord, parseErrors int) (*ImportResult, error) {
	if code, ok := firstDuplicate(records); ok {
		return nil, fmt.Errorf("failed to import %s: %w %q", source, ErrDuplicateBooking, code)
	}

	result := &ImportResult{
		BatchID:     uuid.New().String(),
		Source:      source,
		ImportedAt:  time.Now().UTC().Truncate(time.Second),
		RecordCount: len(records),
		ErrorCount:  parseErrors,
	}

	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
			return fmt.Errorf("failed to clear bookings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM import_batches`); err != nil {
			return fmt.Errorf("failed to clear import batches: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO import_batches (id, source, imported_at, record_count, error_count)
			VALUES (?, ?, ?, ?, ?)
		`, result.BatchID, result.Source, result.ImportedAt.Unix(), result.RecordCount, result.ErrorCount)
		if err != nil {
			return fmt.Errorf("failed to insert import batch: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO bookings (confirmation_code, batch_id, property_code, owner, status,
				start_date, end_date, nights, reserved, revenue)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare booking insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			reserved := 0
			if rec.Reserved {
				reserved = 1
			}
			_, err := stmt.ExecContext(ctx,
				rec.ConfirmationCode, result.BatchID, rec.PropertyCode, rec.Owner, rec.Status,
				rec.StartDate.Format(dateLayout), rec.EndDate.Format(dateLayout),
				rec.Nights, reserved, rec.Revenue.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert booking %s: %w", rec.ConfirmationCode, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Str("batch_id", result.BatchID).
		Str("source", source).
		Int("records", result.RecordCount).
		Int("parse_errors", parseErrors).
		Msg("Imported bookings")

	return result, nil
}

func firstDuplicate(records []domain.BookingRecord) (string, bool) {
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ConfirmationCode]; ok {
			return rec.ConfirmationCode, true
		}
		seen[rec.ConfirmationCode] = struct{}{}
	}
	return "", false
}

// List returns every stored booking ordered by start date and confirmation code
func (r *Repository) List(ctx context.Context) ([]domain.BookingRecord, error) {
	done := utils.MeasureDBQuery("list_bookings", r.log)

	rows, err := r.db.QueryContext(ctx, `
		SELECT confirmation_code, property_code, owner, status, start_date, end_date,
			nights, reserved, revenue
		FROM bookings
		ORDER BY start_date, confirmation_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var records []domain.BookingRecord
	for rows.Next() {
		var (
			rec             domain.BookingRecord
			start, end, rev string
			reserved        int
		)
		if err := rows.Scan(&rec.ConfirmationCode, &rec.PropertyCode, &rec.Owner, &rec.Status,
			&start, &end, &rec.Nights, &reserved, &rev); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}

		if rec.StartDate, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("booking %s: invalid start_date %q: %w", rec.ConfirmationCode, start, err)
		}
		if rec.EndDate, err = time.Parse(dateLayout, end); err != nil {
			return nil, fmt.Errorf("booking %s: invalid end_date %q: %w", rec.ConfirmationCode, end, err)
		}
		if rec.Revenue, err = decimal.NewFromString(rev); err != nil {
			return nil, fmt.Errorf("booking %s: invalid revenue %q: %w", rec.ConfirmationCode, rev, err)
		}
		rec.Reserved = reserved != 0

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	done(int64(len(records)))
	return records, nil
}

// LastImport returns the current batch, or nil when nothing was imported yet
func (r *Repository) LastImport(ctx context.Context) (*ImportResult, error) {
	var (
		result     ImportResult
		importedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, source, imported_at, record_count, error_count
		FROM import_batches
		ORDER BY imported_at DESC
		LIMIT 1
	`).Scan(&result.BatchID, &result.Source, &importedAt, &result.RecordCount, &result.ErrorCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last import: %w", err)
	}

	result.ImportedAt = time.Unix(importedAt, 0).UTC()
	return &result, nil
}
