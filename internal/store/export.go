package store

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/pawprintslab/pawtrail/internal/entity"
)

var summaryHeader = []string{
	"InvoiceNumber", "Year", "MonthBilledFor",
	"ServiceProviderName", "ServiceProviderAddress",
	"ClientName", "ClientAddress", "DogName",
	"DatesAttendedCount", "OriginalCostPerDay", "PercentageDiscount",
	"DiscountedCostPerDay", "TotalAmountDue",
}

var attendanceHeader = []string{"InvoiceNumber", "DogName", "Date", "Day"}

// WriteCSV writes the invoice summary and attendance detail tables wholesale.
// Each file is written to a temp sibling and renamed into place, so a failed
// export never leaves a truncated table behind. The summary is sorted
// chronologically by billed period (unknown periods first), attendance keeps
// document order; both orders are deterministic for a given snapshot.
func WriteCSV(snap Snapshot, summaryPath, attendancePath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	invoices := make([]entity.Invoice, len(snap.Invoices))
	copy(invoices, snap.Invoices)
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].Period.SortKey() < invoices[j].Period.SortKey()
	})

	summary := [][]string{summaryHeader}
	for _, inv := range invoices {
		summary = append(summary, []string{
			inv.ID,
			strconv.Itoa(inv.Period.Year),
			inv.Period.String(),
			inv.ProviderName,
			inv.ProviderAddress,
			inv.ClientName,
			inv.ClientAddress,
			inv.SubjectName,
			strconv.Itoa(inv.AttendedCount),
			decimalCell(inv.BaseCostPerDay),
			intCell(inv.DiscountPercent),
			decimalCell(inv.DiscountedCost),
			decimalCell(inv.TotalAmountDue),
		})
	}

	attendance := [][]string{attendanceHeader}
	for _, e := range snap.Entries {
		attendance = append(attendance, []string{
			e.InvoiceID,
			e.SubjectName,
			e.Date.Format(entity.AttendanceDateLayout),
			e.Weekday,
		})
	}

	if err := writeCSVFile(summaryPath, summary); err != nil {
		return fmt.Errorf("write invoice summary: %w", err)
	}
	if err := writeCSVFile(attendancePath, attendance); err != nil {
		return fmt.Errorf("write attendance detail: %w", err)
	}

	logger.Info("store.export.csv_ok",
		"summary", summaryPath,
		"summary_rows", len(summary)-1,
		"attendance", attendancePath,
		"attendance_rows", len(attendance)-1,
	)
	return nil
}

func writeCSVFile(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func decimalCell(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func intCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
