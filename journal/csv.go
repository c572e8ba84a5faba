package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"id", "time", "entry_price", "stop_loss_price", "stop_loss_amount",
	"investment_amount", "take_profit_price", "fee", "fee_cost", "note",
}

// CSV appends calculations to a single file. The header is written only
// when the file is new or empty. Safe for concurrent use.
type CSV struct {
	mu sync.Mutex
	w  *csv.Writer
	f  *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) RecordCalculation(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.w.Write([]string{
		r.ID,
		r.Time.UTC().Format(time.RFC3339Nano),
		f(r.EntryPrice),
		f(r.StopLossPrice),
		f(r.StopLossAmount),
		f(r.InvestmentAmount),
		f(r.TakeProfitPrice),
		f(r.Fee),
		f(r.FeeCost()),
		r.Note,
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		_ = j.f.Close()
		return err
	}
	return j.f.Close()
}

// full precision; rounding is a display concern
func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
