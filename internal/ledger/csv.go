package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/model"
)

// Header is the fixed header row of the ledger file.
const Header = "Name,Amount,Category,Date"

const (
	numFields   = 4
	colName     = 0
	colAmount   = 1
	colCategory = 2
	colDate     = 3
)

var headerFields = strings.Split(Header, ",")

// MarshalExpense converts an Expense to a CSV row ([]string).
func MarshalExpense(e model.Expense) []string {
	row := make([]string, numFields)
	row[colName] = e.Name
	row[colAmount] = model.FormatAmount(e.Amount)
	row[colCategory] = e.Category
	row[colDate] = e.DateString()
	return row
}

// UnmarshalExpense converts a CSV row to an Expense. The returned
// *ParseError has no line number; callers fill it in.
func UnmarshalExpense(record []string) (model.Expense, *ParseError) {
	if len(record) != numFields {
		return model.Expense{}, &ParseError{Err: fmt.Errorf("expected %d fields, got %d", numFields, len(record))}
	}

	amount, err := model.ParseAmount(record[colAmount])
	if err != nil {
		return model.Expense{}, &ParseError{Column: "amount", Value: record[colAmount], Err: err}
	}

	date, err := model.ParseDate(record[colDate])
	if err != nil {
		return model.Expense{}, &ParseError{Column: "date", Value: record[colDate], Err: err}
	}

	e := model.Expense{
		Name:     record[colName],
		Category: record[colCategory],
		Amount:   amount,
		Date:     date,
	}
	if err := e.Validate(); err != nil {
		return model.Expense{}, &ParseError{Column: "name", Value: record[colName], Err: err}
	}
	return e, nil
}

// WriteExpenses writes expenses to a ledger writer (including header).
func WriteExpenses(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headerFields); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range expenses {
		if err := cw.Write(MarshalExpense(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendExpenses appends expenses to an existing ledger writer (no header).
func AppendExpenses(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	for i, e := range expenses {
		if err := cw.Write(MarshalExpense(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeRecords(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// checkHeader validates the first row. A leading UTF-8 BOM is tolerated.
func checkHeader(path string, record []string) error {
	got := slices.Clone(record)
	if len(got) > 0 {
		got[0] = strings.TrimPrefix(got[0], "\ufeff")
	}
	if !slices.Equal(got, headerFields) {
		return &SchemaError{Path: path, Got: record}
	}
	return nil
}

// row is one data line read from the ledger. Exactly one of expense or
// err is meaningful; fields is nil when the line was not valid CSV.
type row struct {
	line    int
	fields  []string
	expense model.Expense
	err     *ParseError
}

// rowReader streams rows after verifying the header. Record IDs are
// assigned to valid rows in file order.
type rowReader struct {
	path   string
	cr     *csv.Reader
	ids    *id.Assigner
	header bool
}

func newRowReader(path string, r io.Reader) *rowReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return &rowReader{path: path, cr: cr, ids: id.NewAssigner()}
}

// next returns the next data row, io.EOF at the end, or a fatal error
// (*SchemaError or an I/O failure).
func (r *rowReader) next() (row, error) {
	for {
		record, err := r.cr.Read()
		if errors.Is(err, io.EOF) {
			return row{}, io.EOF
		}

		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			if !r.header {
				return row{}, &SchemaError{Path: r.path}
			}
			return row{line: csvErr.StartLine, err: &ParseError{Line: csvErr.StartLine, Err: csvErr.Err}}, nil
		}
		if err != nil {
			return row{}, fmt.Errorf("reading ledger %s: %w", r.path, err)
		}

		line, _ := r.cr.FieldPos(0)
		if !r.header {
			if err := checkHeader(r.path, record); err != nil {
				return row{}, err
			}
			r.header = true
			continue
		}

		e, perr := UnmarshalExpense(record)
		if perr != nil {
			perr.Line = line
			return row{line: line, fields: record, err: perr}, nil
		}
		e.ID = r.ids.Next(record[colName], model.FormatAmount(e.Amount), record[colCategory], e.DateString())
		return row{line: line, fields: record, expense: e}, nil
	}
}
