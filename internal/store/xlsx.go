package store

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/pawprintslab/pawtrail/internal/entity"
)

// WriteXLSX produces a two-sheet workbook (invoice summary + attendance
// detail) as bytes, mirroring the CSV column sets.
func WriteXLSX(snap Snapshot, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()

	const summarySheet = "Invoice Summary"
	const attendanceSheet = "Attendance Detail"

	// The default sheet becomes the summary; attendance gets its own.
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(attendanceSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	write := func(sheet string, row int, cells []any) error {
		for i, v := range cells {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	header := make([]any, len(summaryHeader))
	for i, h := range summaryHeader {
		header[i] = h
	}
	if err := write(summarySheet, 1, header); err != nil {
		return nil, err
	}

	invoices := make([]entity.Invoice, len(snap.Invoices))
	copy(invoices, snap.Invoices)
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].Period.SortKey() < invoices[j].Period.SortKey()
	})
	for r, inv := range invoices {
		cells := []any{
			inv.ID,
			inv.Period.Year,
			inv.Period.String(),
			inv.ProviderName,
			inv.ProviderAddress,
			inv.ClientName,
			inv.ClientAddress,
			inv.SubjectName,
			inv.AttendedCount,
			decimalCell(inv.BaseCostPerDay),
			intCell(inv.DiscountPercent),
			decimalCell(inv.DiscountedCost),
			decimalCell(inv.TotalAmountDue),
		}
		if err := write(summarySheet, r+2, cells); err != nil {
			return nil, err
		}
	}

	aheader := make([]any, len(attendanceHeader))
	for i, h := range attendanceHeader {
		aheader[i] = h
	}
	if err := write(attendanceSheet, 1, aheader); err != nil {
		return nil, err
	}
	for r, e := range snap.Entries {
		cells := []any{
			e.InvoiceID,
			e.SubjectName,
			e.Date.Format(entity.AttendanceDateLayout),
			e.Weekday,
		}
		if err := write(attendanceSheet, r+2, cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	logger.Info("store.export.xlsx_ok", "invoices", len(invoices), "attendance", len(snap.Entries))
	return buf.Bytes(), nil
}
