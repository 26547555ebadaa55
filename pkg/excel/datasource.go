package excel

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDataSource streams a SQL query result as a sheet. Headers come from the
// result's field descriptions.
type PgxDataSource struct {
	db        *pgxpool.Pool
	query     string
	args      []any
	sheetName string
}

func NewPgxDataSource(db *pgxpool.Pool, query string, args ...any) *PgxDataSource {
	return &PgxDataSource{db: db, query: query, args: args, sheetName: "Export"}
}

func (d *PgxDataSource) WithSheetName(name string) *PgxDataSource {
	d.sheetName = name
	return d
}

func (d *PgxDataSource) SheetName() string {
	return d.sheetName
}

func (d *PgxDataSource) Read(ctx context.Context) ([]string, [][]any, error) {
	rows, err := d.db.Query(ctx, d.query, d.args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	headers := make([]string, len(fields))
	for i, fd := range fields {
		headers[i] = fd.Name
	}

	var out [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return headers, out, nil
}

// SliceDataSource adapts already-materialized rows, for reports assembled in
// memory.
type SliceDataSource struct {
	sheetName string
	headers   []string
	rows      [][]any
}

func NewSliceDataSource(sheetName string, headers []string, rows [][]any) *SliceDataSource {
	return &SliceDataSource{sheetName: sheetName, headers: headers, rows: rows}
}

func (d *SliceDataSource) SheetName() string {
	return d.sheetName
}

func (d *SliceDataSource) Read(_ context.Context) ([]string, [][]any, error) {
	return d.headers, d.rows, nil
}
