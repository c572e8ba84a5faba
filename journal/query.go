package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const selectColumns = `
		SELECT id, time, entry_price, stop_loss_price, stop_loss_amount, investment_amount, take_profit_price, fee, note
		FROM calculations`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	err := s.Scan(
		&rec.ID,
		&rec.Time,
		&rec.EntryPrice,
		&rec.StopLossPrice,
		&rec.StopLossAmount,
		&rec.InvestmentAmount,
		&rec.TakeProfitPrice,
		&rec.Fee,
		&rec.Note,
	)
	return rec, err
}

// Get returns a single calculation by ID.
func (j *SQLite) Get(id string) (Record, error) {
	row := j.db.QueryRow(selectColumns+`
		WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, fmt.Errorf("calculation %q not found", id)
		}
		return Record{}, err
	}
	return rec, nil
}

// ListBetween returns calculations made within [start, end).
func (j *SQLite) ListBetween(start, end time.Time) ([]Record, error) {
	rows, err := j.db.Query(selectColumns+`
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Recent returns up to n calculations, newest first.
func (j *SQLite) Recent(n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := j.db.Query(selectColumns+`
		ORDER BY id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
