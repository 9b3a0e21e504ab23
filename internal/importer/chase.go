package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const chaseDateLayout = "01/02/2006"

// Columns the Chase export must carry. Others (Details, Balance, Check or
// Slip #) are ignored, and column order does not matter.
var chaseColumns = []string{"Posting Date", "Description", "Amount", "Type"}

// ChaseParser parses Chase checking account CSV exports.
type ChaseParser struct{}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase export and returns its transactions in file order.
// Any bad row fails the whole statement.
func (p *ChaseParser) Parse(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0 // every row must match the header width

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	cols, err := chaseColumnIndex(header)
	if err != nil {
		return nil, err
	}

	var txns []Transaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return txns, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading chase CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		txn, err := cols.transaction(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
}

type chaseIndex struct {
	date, desc, amount, kind int
}

func chaseColumnIndex(header []string) (chaseIndex, error) {
	pos := make([]int, len(chaseColumns))
	for i, name := range chaseColumns {
		pos[i] = slices.IndexFunc(header, func(h string) bool {
			return strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name)
		})
		if pos[i] < 0 {
			return chaseIndex{}, fmt.Errorf("not a chase export: missing %q column", name)
		}
	}
	return chaseIndex{date: pos[0], desc: pos[1], amount: pos[2], kind: pos[3]}, nil
}

func (c chaseIndex) transaction(rec []string) (Transaction, error) {
	date, err := time.Parse(chaseDateLayout, rec[c.date])
	if err != nil {
		return Transaction{}, fmt.Errorf("parsing date %q: %w", rec[c.date], err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rec[c.amount]))
	if err != nil {
		return Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[c.amount], err)
	}
	return Transaction{
		Date:        date,
		Description: strings.TrimSpace(rec[c.desc]),
		Amount:      amount,
		Type:        rec[c.kind],
	}, nil
}
