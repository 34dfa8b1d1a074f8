package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawprintslab/pawtrail/internal/common"
	"github.com/pawprintslab/pawtrail/internal/entity"
)

func testStore(t *testing.T) *RecordStore {
	t.Helper()
	db, driver, err := Open(context.Background(), filepath.Join(t.TempDir(), "records.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rs, err := NewRecordStore(db, driver, nil)
	require.NoError(t, err)
	return rs
}

func testInvoice(id string, month string, year int) entity.Invoice {
	disc := 20
	return entity.Invoice{
		ID:              id,
		SourceID:        id + ".txt",
		Period:          entity.Period{Month: month, Year: year},
		ProviderName:    "Pawprints and Playcare LLC",
		ProviderAddress: "7427 Willow Creek Drive, Bloomington, MN",
		ClientName:      "Charlie Brown",
		ClientAddress:   "32 Willow Crescent, Bloomington, MN",
		SubjectName:     "Snoopy",
		BaseCostPerDay:  decimal.NullDecimal{Decimal: decimal.RequireFromString("10.00"), Valid: true},
		DiscountPercent: &disc,
		DiscountedCost:  decimal.NullDecimal{Decimal: decimal.RequireFromString("8.00"), Valid: true},
		TotalAmountDue:  decimal.NullDecimal{Decimal: decimal.RequireFromString("24.00"), Valid: true},
		AttendedCount:   3,
		RawText:         "Invoice Number: " + id,
	}
}

func testEntry(invoiceID string, date time.Time) entity.AttendanceEntry {
	return entity.NewAttendanceEntry(invoiceID, "Snoopy", date)
}

func TestRebuildAndReload(t *testing.T) {
	rs := testStore(t)
	ctx := context.Background()

	invoices := []entity.Invoice{testInvoice("INV-1", "January", 2024)}
	entries := []entity.AttendanceEntry{
		testEntry("INV-1", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
		testEntry("INV-1", time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, rs.Rebuild(ctx, invoices, entries))

	// A second store on the same handle must load the same records from disk.
	fresh, err := NewRecordStore(rs.db, rs.driver, nil)
	require.NoError(t, err)
	snap, err := fresh.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Invoices, 1)
	got := snap.Invoices[0]
	assert.Equal(t, "INV-1", got.ID)
	assert.Equal(t, entity.Period{Month: "January", Year: 2024}, got.Period)
	assert.Equal(t, "Snoopy", got.SubjectName)
	require.True(t, got.BaseCostPerDay.Valid)
	assert.Equal(t, "10.00", got.BaseCostPerDay.Decimal.StringFixed(2))
	require.NotNil(t, got.DiscountPercent)
	assert.Equal(t, 20, *got.DiscountPercent)
	assert.Equal(t, 3, got.AttendedCount)

	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "Monday", snap.Entries[0].Weekday)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), snap.Entries[1].Date)
}

func TestRebuildPreservesNulls(t *testing.T) {
	rs := testStore(t)
	ctx := context.Background()

	inv := entity.Invoice{ID: "INV-2", SourceID: "b.txt", Period: entity.UnknownPeriod}
	require.NoError(t, rs.Rebuild(ctx, []entity.Invoice{inv}, nil))

	fresh, err := NewRecordStore(rs.db, rs.driver, nil)
	require.NoError(t, err)
	snap, err := fresh.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Invoices, 1)
	got := snap.Invoices[0]
	assert.False(t, got.BaseCostPerDay.Valid)
	assert.False(t, got.TotalAmountDue.Valid)
	assert.Nil(t, got.DiscountPercent)
	assert.Equal(t, entity.UnknownPeriod, got.Period)
}

func TestRebuildReplacesWholesale(t *testing.T) {
	rs := testStore(t)
	ctx := context.Background()

	require.NoError(t, rs.Rebuild(ctx,
		[]entity.Invoice{testInvoice("INV-1", "January", 2024), testInvoice("INV-2", "February", 2024)},
		nil))
	require.NoError(t, rs.Rebuild(ctx,
		[]entity.Invoice{testInvoice("INV-3", "March", 2024)},
		nil))

	fresh, err := NewRecordStore(rs.db, rs.driver, nil)
	require.NoError(t, err)
	snap, err := fresh.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, snap.Invoices, 1)
	assert.Equal(t, "INV-3", snap.Invoices[0].ID)
}

func TestSnapshotWithoutBuild(t *testing.T) {
	rs := testStore(t)
	_, err := rs.Snapshot(context.Background())
	assert.ErrorIs(t, err, common.ErrMissingPrerequisite)
}

func TestWriteCSVDeterministic(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "invoice_summary.csv")
	attendance := filepath.Join(dir, "attendance_detail.csv")

	snap := Snapshot{
		Invoices: []entity.Invoice{
			testInvoice("INV-2", "February", 2024),
			testInvoice("INV-1", "January", 2024),
		},
		Entries: []entity.AttendanceEntry{
			testEntry("INV-1", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
		},
	}

	require.NoError(t, WriteCSV(snap, summary, attendance, nil))
	first, err := os.ReadFile(summary)
	require.NoError(t, err)

	require.NoError(t, WriteCSV(snap, summary, attendance, nil))
	second, err := os.ReadFile(summary)
	require.NoError(t, err)

	// Re-exporting the same snapshot must produce byte-identical files.
	assert.Equal(t, first, second)

	text := string(first)
	assert.Contains(t, text, "InvoiceNumber,Year,MonthBilledFor")
	// Chronological order: January before February.
	assert.Less(t,
		strings.Index(text, "INV-1"), strings.Index(text, "INV-2"),
		"summary must be sorted by billed period")

	detail, err := os.ReadFile(attendance)
	require.NoError(t, err)
	assert.Contains(t, string(detail), "INV-1,Snoopy,01/01/2024,Monday")
}

func TestWriteCSVEmptyCells(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "s.csv")
	attendance := filepath.Join(dir, "a.csv")

	snap := Snapshot{Invoices: []entity.Invoice{{ID: "INV-9", Period: entity.UnknownPeriod}}}
	require.NoError(t, WriteCSV(snap, summary, attendance, nil))

	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	// Null pricing renders as empty cells, never as zeros.
	assert.Contains(t, string(data), "INV-9,0,Unknown,,,,,,0,,,,")
}

func TestWriteXLSX(t *testing.T) {
	snap := Snapshot{
		Invoices: []entity.Invoice{testInvoice("INV-1", "January", 2024)},
		Entries: []entity.AttendanceEntry{
			testEntry("INV-1", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
		},
	}

	data, err := WriteXLSX(snap, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://user@host/db"))
	assert.True(t, IsPostgresDSN("postgresql://user@host/db"))
	assert.False(t, IsPostgresDSN("data/records.db"))
	assert.False(t, IsPostgresDSN("/var/lib/pawtrail/records.db"))
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	assert.Equal(t, q, rebind(DriverSQLite, q))
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", rebind(DriverPostgres, q))
}
