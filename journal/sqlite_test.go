package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/poscalc/risk"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func sampleRecord(t *testing.T, at time.Time) Record {
	t.Helper()

	res, err := risk.Calculate(risk.TextInputs{
		EntryPrice:     "100",
		StopLossPrice:  "95",
		StopLossAmount: "10",
		FeeRate:        "0.1",
	})
	require.NoError(t, err)
	return NewRecord(res, at)
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = 'calculations'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "calculations", name)
}

func TestSQLiteRecordAndGet(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	rec := sampleRecord(t, at)
	rec.Note = "btc breakout"

	require.NoError(t, j.RecordCalculation(rec))

	got, err := j.Get(rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, got.Time.Equal(at))
	assert.Equal(t, rec.EntryPrice, got.EntryPrice)
	assert.Equal(t, rec.StopLossPrice, got.StopLossPrice)
	assert.Equal(t, rec.StopLossAmount, got.StopLossAmount)
	assert.Equal(t, rec.InvestmentAmount, got.InvestmentAmount)
	assert.Equal(t, rec.TakeProfitPrice, got.TakeProfitPrice)
	assert.Equal(t, rec.Fee, got.Fee)
	assert.Equal(t, "btc breakout", got.Note)
	assert.Equal(t, rec.Result(), got.Result())
}

func TestSQLiteGetMissing(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	_, err := j.Get("01JNOTTHERE0000000000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListBetweenAndRecent(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		day.Add(-time.Hour),     // previous day
		day.Add(9 * time.Hour),  // in range
		day.Add(15 * time.Hour), // in range
		day.Add(25 * time.Hour), // next day
	}
	var ids []string
	for _, ts := range times {
		rec := sampleRecord(t, ts)
		ids = append(ids, rec.ID)
		require.NoError(t, j.RecordCalculation(rec))
	}

	got, err := j.ListBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[1], got[0].ID)
	assert.Equal(t, ids[2], got[1].ID)

	recent, err := j.Recent(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, ids[3], recent[0].ID)
	assert.Equal(t, ids[2], recent[1].ID)
	assert.Equal(t, ids[1], recent[2].ID)

	none, err := j.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteDuplicateID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	rec := sampleRecord(t, time.Now())
	require.NoError(t, j.RecordCalculation(rec))
	assert.Error(t, j.RecordCalculation(rec))
}
