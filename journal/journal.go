// journal/journal.go
package journal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/poscalc/config"
	"github.com/rustyeddy/poscalc/pkg/id"
	"github.com/rustyeddy/poscalc/risk"
)

// Record is one successful calculation.
type Record struct {
	ID               string
	Time             time.Time
	EntryPrice       float64
	StopLossPrice    float64
	StopLossAmount   float64
	InvestmentAmount float64
	TakeProfitPrice  float64
	Fee              float64 // fraction
	Note             string
}

func NewRecord(r risk.Result, at time.Time) Record {
	return Record{
		ID:               id.At(at),
		Time:             at.UTC(),
		EntryPrice:       r.EntryPrice,
		StopLossPrice:    r.StopLossPrice,
		StopLossAmount:   r.StopLossAmount,
		InvestmentAmount: r.InvestmentAmount,
		TakeProfitPrice:  r.TakeProfitPrice,
		Fee:              r.Fee,
	}
}

// Result rebuilds the calculator output the record was made from.
func (r Record) Result() risk.Result {
	return risk.Result{
		EntryPrice:       r.EntryPrice,
		StopLossPrice:    r.StopLossPrice,
		StopLossAmount:   r.StopLossAmount,
		InvestmentAmount: r.InvestmentAmount,
		TakeProfitPrice:  r.TakeProfitPrice,
		Fee:              r.Fee,
	}
}

func (r Record) FeeCost() float64 {
	return r.Result().FeeCost()
}

type Journal interface {
	RecordCalculation(Record) error
	Close() error
}

// Open builds the journal selected by cfg. Type "none" (or empty) yields
// a journal that drops everything.
func Open(cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "", "none":
		return Nop{}, nil
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	case "csv":
		return NewCSV(cfg.CSVPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

// Nop discards records.
type Nop struct{}

func (Nop) RecordCalculation(Record) error { return nil }
func (Nop) Close() error                   { return nil }

// Recorder adapts a Journal to the session's result hook.
type Recorder struct {
	J   Journal
	Now func() time.Time
}

func NewRecorder(j Journal) *Recorder {
	return &Recorder{J: j, Now: time.Now}
}

func (r *Recorder) RecordResult(res risk.Result) error {
	return r.J.RecordCalculation(NewRecord(res, r.Now()))
}
