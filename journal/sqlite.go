package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordCalculation(r Record) error {
	_, err := j.db.Exec(`
		INSERT INTO calculations
		(id, time, entry_price, stop_loss_price, stop_loss_amount, investment_amount, take_profit_price, fee, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Time.UTC(), r.EntryPrice, r.StopLossPrice, r.StopLossAmount,
		r.InvestmentAmount, r.TakeProfitPrice, r.Fee, r.Note,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
