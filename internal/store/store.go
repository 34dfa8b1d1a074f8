package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pawprintslab/pawtrail/internal/common"
	"github.com/pawprintslab/pawtrail/internal/entity"
)

// Snapshot is the full record set of one batch run: one row per invoice,
// one row per attendance entry, both in deterministic document order.
type Snapshot struct {
	Invoices []entity.Invoice
	Entries  []entity.AttendanceEntry
}

// Empty reports whether the snapshot holds no invoices at all.
func (s Snapshot) Empty() bool {
	return len(s.Invoices) == 0
}

// RecordStore persists the two flat tables. Rebuild writes staging tables
// and swaps them in one transaction, so readers see either the previous
// build or the new one, never a partial overwrite. The store is written only
// by the batch build step and is read-only during a query session.
type RecordStore struct {
	db     *sql.DB
	driver string
	logger *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

func NewRecordStore(db *sql.DB, driver string, logger *slog.Logger) (*RecordStore, error) {
	if db == nil {
		return nil, common.MissingPrerequisite("records database handle")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{db: db, driver: driver, logger: logger}, nil
}

const (
	createInvoicesStaging = `CREATE TABLE invoices_staging (
		seq INTEGER PRIMARY KEY,
		invoice_number TEXT NOT NULL,
		source_id TEXT NOT NULL,
		month TEXT NOT NULL,
		year INTEGER NOT NULL,
		provider_name TEXT NOT NULL,
		provider_address TEXT NOT NULL,
		client_name TEXT NOT NULL,
		client_address TEXT NOT NULL,
		subject_name TEXT NOT NULL,
		base_cost_per_day TEXT,
		discount_percent INTEGER,
		discounted_cost_per_day TEXT,
		total_amount_due TEXT,
		attended_count INTEGER NOT NULL,
		raw_text TEXT NOT NULL
	)`
	createAttendanceStaging = `CREATE TABLE attendance_staging (
		seq INTEGER PRIMARY KEY,
		invoice_number TEXT NOT NULL,
		subject_name TEXT NOT NULL,
		date TEXT NOT NULL,
		weekday TEXT NOT NULL
	)`
	insertInvoice = `INSERT INTO invoices_staging (
		seq, invoice_number, source_id, month, year,
		provider_name, provider_address, client_name, client_address, subject_name,
		base_cost_per_day, discount_percent, discounted_cost_per_day, total_amount_due,
		attended_count, raw_text
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertAttendance = `INSERT INTO attendance_staging (
		seq, invoice_number, subject_name, date, weekday
	) VALUES (?, ?, ?, ?, ?)`
)

// Rebuild replaces both tables wholesale from the ordered extraction output.
// Invoices without an identifiable invoice number are stored too; consumers
// needing valid ids filter them out.
func (s *RecordStore) Rebuild(ctx context.Context, invoices []entity.Invoice, entries []entity.AttendanceEntry) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, q := range []string{
		`DROP TABLE IF EXISTS invoices_staging`,
		`DROP TABLE IF EXISTS attendance_staging`,
		createInvoicesStaging,
		createAttendanceStaging,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("prepare staging: %w", err)
		}
	}

	for i, inv := range invoices {
		if _, err := tx.ExecContext(ctx, rebind(s.driver, insertInvoice),
			i,
			inv.ID,
			inv.SourceID,
			inv.Period.Month,
			inv.Period.Year,
			inv.ProviderName,
			inv.ProviderAddress,
			inv.ClientName,
			inv.ClientAddress,
			inv.SubjectName,
			nullDecimalArg(inv.BaseCostPerDay),
			nullIntArg(inv.DiscountPercent),
			nullDecimalArg(inv.DiscountedCost),
			nullDecimalArg(inv.TotalAmountDue),
			inv.AttendedCount,
			inv.RawText,
		); err != nil {
			return fmt.Errorf("insert invoice %s: %w", inv.SourceID, err)
		}
	}
	for i, e := range entries {
		if _, err := tx.ExecContext(ctx, rebind(s.driver, insertAttendance),
			i, e.InvoiceID, e.SubjectName, e.Date.Format("2006-01-02"), e.Weekday,
		); err != nil {
			return fmt.Errorf("insert attendance %d: %w", i, err)
		}
	}

	// Swap: the previous build disappears only after staging is complete.
	for _, q := range []string{
		`DROP TABLE IF EXISTS invoices`,
		`DROP TABLE IF EXISTS attendance`,
		`ALTER TABLE invoices_staging RENAME TO invoices`,
		`ALTER TABLE attendance_staging RENAME TO attendance`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("swap tables: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}

	snap := &Snapshot{Invoices: invoices, Entries: entries}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Info("store.rebuild.ok",
		"invoices", len(invoices),
		"attendance", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Snapshot returns the current record set, loading it from the database when
// this process hasn't built it in memory yet.
func (s *RecordStore) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return *snap, nil
	}
	loaded, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	s.snap = &loaded
	s.mu.Unlock()
	return loaded, nil
}

func (s *RecordStore) load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	rows, err := s.db.QueryContext(ctx, `SELECT
		invoice_number, source_id, month, year,
		provider_name, provider_address, client_name, client_address, subject_name,
		base_cost_per_day, discount_percent, discounted_cost_per_day, total_amount_due,
		attended_count, raw_text
	FROM invoices ORDER BY seq`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: invoice tables not built: %v", common.ErrMissingPrerequisite, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var inv entity.Invoice
		var base, discounted, total sql.NullString
		var discount sql.NullInt64
		if err := rows.Scan(
			&inv.ID, &inv.SourceID, &inv.Period.Month, &inv.Period.Year,
			&inv.ProviderName, &inv.ProviderAddress, &inv.ClientName, &inv.ClientAddress, &inv.SubjectName,
			&base, &discount, &discounted, &total,
			&inv.AttendedCount, &inv.RawText,
		); err != nil {
			return Snapshot{}, fmt.Errorf("scan invoice: %w", err)
		}
		inv.BaseCostPerDay = scanDecimal(base)
		inv.DiscountedCost = scanDecimal(discounted)
		inv.TotalAmountDue = scanDecimal(total)
		if discount.Valid {
			v := int(discount.Int64)
			inv.DiscountPercent = &v
		}
		snap.Invoices = append(snap.Invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate invoices: %w", err)
	}

	arows, err := s.db.QueryContext(ctx, `SELECT invoice_number, subject_name, date, weekday
		FROM attendance ORDER BY seq`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: attendance table not built: %v", common.ErrMissingPrerequisite, err)
	}
	defer func() {
		_ = arows.Close()
	}()
	for arows.Next() {
		var e entity.AttendanceEntry
		var date string
		if err := arows.Scan(&e.InvoiceID, &e.SubjectName, &date, &e.Weekday); err != nil {
			return Snapshot{}, fmt.Errorf("scan attendance: %w", err)
		}
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return Snapshot{}, fmt.Errorf("stored attendance date %q: %w", date, err)
		}
		e.Date = d
		snap.Entries = append(snap.Entries, e)
	}
	if err := arows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate attendance: %w", err)
	}

	return snap, nil
}

func nullDecimalArg(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.StringFixed(2)
}

func nullIntArg(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func scanDecimal(s sql.NullString) decimal.NullDecimal {
	if !s.Valid {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
