// Package forecast projects next month's spending with an ordinary least
// squares trend over monthly totals.
//
// Months are placed on the axis x = year*12 + month so that consecutive
// months are one unit apart across year boundaries.
package forecast

import (
	"errors"
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/aggregate"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

// Source yields ledger records. *ledger.Store satisfies it.
type Source interface {
	Scan(f model.Filter) iter.Seq2[model.Expense, error]
}

// Point is one observed month.
type Point struct {
	Period model.Period
	Total  decimal.Decimal
}

// Line is a fitted trend y = Intercept + Slope*x.
type Line struct {
	Slope     decimal.Decimal
	Intercept decimal.Decimal
	RSquared  decimal.Decimal // 1 when every point lies on the line
}

// At evaluates the line at x.
func (l Line) At(x int) decimal.Decimal {
	return l.Intercept.Add(l.Slope.Mul(decimal.NewFromInt(int64(x))))
}

// Fit computes the least squares line through points, using each point's
// period index as x. A single point yields a flat line through it.
func Fit(points []Point) (Line, error) {
	if len(points) == 0 {
		return Line{}, &InsufficientDataError{}
	}

	n := decimal.NewFromInt(int64(len(points)))
	sumX, sumY, sumXY, sumX2 := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range points {
		x := decimal.NewFromInt(int64(p.Period.Index()))
		sumX = sumX.Add(x)
		sumY = sumY.Add(p.Total)
		sumXY = sumXY.Add(x.Mul(p.Total))
		sumX2 = sumX2.Add(x.Mul(x))
	}

	denom := n.Mul(sumX2).Sub(sumX.Mul(sumX))
	if denom.IsZero() {
		return Line{Slope: decimal.Zero, Intercept: sumY.Div(n), RSquared: decimal.NewFromInt(1)}, nil
	}

	slope := n.Mul(sumXY).Sub(sumX.Mul(sumY)).Div(denom)
	intercept := sumY.Sub(slope.Mul(sumX)).Div(n)
	line := Line{Slope: slope, Intercept: intercept}

	meanY := sumY.Div(n)
	ssRes, ssTot := decimal.Zero, decimal.Zero
	for _, p := range points {
		res := p.Total.Sub(line.At(p.Period.Index()))
		dev := p.Total.Sub(meanY)
		ssRes = ssRes.Add(res.Mul(res))
		ssTot = ssTot.Add(dev.Mul(dev))
	}
	if ssTot.IsZero() {
		line.RSquared = decimal.NewFromInt(1)
	} else {
		line.RSquared = decimal.NewFromInt(1).Sub(ssRes.Div(ssTot))
	}
	return line, nil
}

// Forecast is a projection for the month after the latest observed one.
type Forecast struct {
	Period  model.Period
	Amount  decimal.Decimal // rounded to cents; may be negative
	Line    Line
	History []Point // ascending by period
	Skipped []*ledger.ParseError
}

// NextMonth fits a trend over every month in src and evaluates it one
// month past the latest. With a single month of history it returns that
// month's total.
func NextMonth(src Source) (*Forecast, error) {
	var (
		records []model.Expense
		skipped []*ledger.ParseError
	)
	for e, err := range src.Scan(model.Filter{}) {
		var perr *ledger.ParseError
		if errors.As(err, &perr) {
			skipped = append(skipped, perr)
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, e)
	}

	history := History(records)
	if len(history) == 0 {
		return nil, &InsufficientDataError{Months: 0}
	}

	line, err := Fit(history)
	if err != nil {
		return nil, err
	}
	target := history[len(history)-1].Period.Next()
	return &Forecast{
		Period:  target,
		Amount:  line.At(target.Index()).Round(2),
		Line:    line,
		History: history,
		Skipped: skipped,
	}, nil
}

// History groups records into monthly points ordered by period.
func History(records []model.Expense) []Point {
	byMonth := aggregate.ByMonth(records)
	points := make([]Point, 0, len(byMonth))
	for p, total := range byMonth {
		points = append(points, Point{Period: p, Total: total})
	}
	slices.SortFunc(points, func(a, b Point) int { return a.Period.Index() - b.Period.Index() })
	return points
}
