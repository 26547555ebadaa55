package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DataSource supplies one sheet of tabular data to the exporter.
type DataSource interface {
	SheetName() string
	// Read returns the header row and the data rows.
	Read(ctx context.Context) (headers []string, rows [][]any, err error)
}

type ExportOptions struct {
	IncludeHeaders bool
	AutoFilter     bool
}

type StyleOptions struct {
	HeaderBold   bool
	FreezeHeader bool
}

func DefaultExportOptions() ExportOptions {
	return ExportOptions{IncludeHeaders: true, AutoFilter: false}
}

func DefaultStyleOptions() StyleOptions {
	return StyleOptions{HeaderBold: true, FreezeHeader: true}
}

// ExcelExporter renders data sources into XLSX bytes.
type ExcelExporter struct {
	opts  ExportOptions
	style StyleOptions
}

func NewExcelExporter(opts ExportOptions, style StyleOptions) *ExcelExporter {
	return &ExcelExporter{opts: opts, style: style}
}

func (e *ExcelExporter) Export(ctx context.Context, ds DataSource) ([]byte, error) {
	headers, rows, err := ds.Read(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := ds.SheetName()
	if sheet == "" {
		sheet = "Sheet1"
	}
	// Excel caps sheet names at 31 characters.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}

	rowIdx := 1
	if e.opts.IncludeHeaders && len(headers) > 0 {
		headerRow := make([]any, len(headers))
		for i, h := range headers {
			headerRow[i] = h
		}
		if err := e.writeRow(f, sheet, rowIdx, headerRow); err != nil {
			return nil, err
		}
		if e.style.HeaderBold {
			styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
			if err != nil {
				return nil, err
			}
			endCell, err := excelize.CoordinatesToCellName(len(headers), 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sheet, "A1", endCell, styleID); err != nil {
				return nil, err
			}
		}
		rowIdx++
	}

	for _, row := range rows {
		if err := e.writeRow(f, sheet, rowIdx, row); err != nil {
			return nil, err
		}
		rowIdx++
	}

	if e.style.FreezeHeader && e.opts.IncludeHeaders {
		err := f.SetPanes(sheet, &excelize.Panes{
			Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
		})
		if err != nil {
			return nil, err
		}
	}
	if e.opts.AutoFilter && len(headers) > 0 {
		endCell, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return nil, err
		}
		if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s", endCell), nil); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *ExcelExporter) writeRow(f *excelize.File, sheet string, rowIdx int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &row)
}
