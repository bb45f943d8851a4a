// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package finance

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const scheduleSheet = "Schedule"

var scheduleHeader = []string{"Month", "Payment", "Principal", "Interest", "Extra", "Balance"}

// WriteScheduleCSV writes an amortization schedule as CSV with a header row.
func WriteScheduleCSV(w io.Writer, schedule []Installment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range schedule {
		record := []string{
			strconv.Itoa(row.Month),
			money(row.Payment),
			money(row.Principal),
			money(row.Interest),
			money(row.Extra),
			money(row.Balance),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", row.Month, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScheduleXLSX writes an amortization schedule as an Excel workbook
// with a bold header row and currency-formatted columns.
func WriteScheduleXLSX(w io.Writer, schedule []Installment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(scheduleSheet, "A1", &scheduleHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(scheduleSheet, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range schedule {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.Month, round2(row.Payment), round2(row.Principal), round2(row.Interest), round2(row.Extra), round2(row.Balance)}
		if err := f.SetSheetRow(scheduleSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Month, err)
		}
	}

	if len(schedule) > 0 {
		moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
		if err != nil {
			return fmt.Errorf("failed to create number style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(6, len(schedule)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(scheduleSheet, "B2", last, moneyStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func round2(v float64) float64 {
	f, _ := strconv.ParseFloat(money(v), 64)
	return f
}
