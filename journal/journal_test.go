package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/poscalc/config"
	"github.com/rustyeddy/poscalc/pkg/id"
	"github.com/rustyeddy/poscalc/risk"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	j, err := Open(config.JournalConfig{Type: "none"})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, j)

	j, err = Open(config.JournalConfig{Type: "sqlite", DBPath: filepath.Join(dir, "j.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, j)
	require.NoError(t, j.Close())

	j, err = Open(config.JournalConfig{Type: "csv", CSVPath: filepath.Join(dir, "j.csv")})
	require.NoError(t, err)
	assert.IsType(t, &CSV{}, j)
	require.NoError(t, j.Close())

	_, err = Open(config.JournalConfig{Type: "redis"})
	assert.Error(t, err)
}

func TestNewRecord(t *testing.T) {
	t.Parallel()

	res := risk.Result{
		EntryPrice:       100,
		StopLossPrice:    95,
		StopLossAmount:   10,
		InvestmentAmount: 196,
		TakeProfitPrice:  105,
		Fee:              0.001,
	}
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))

	rec := NewRecord(res, at)
	assert.Equal(t, res, rec.Result())
	assert.Equal(t, time.UTC, rec.Time.Location())
	assert.True(t, rec.Time.Equal(at))

	ts, err := id.Time(rec.ID)
	require.NoError(t, err)
	assert.True(t, ts.Equal(at))
	assert.InDelta(t, 0.196, rec.FeeCost(), 1e-12)
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	at := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	r := NewRecorder(j)
	r.Now = func() time.Time { return at }

	res := sampleRecord(t, at).Result()
	require.NoError(t, r.RecordResult(res))

	got, err := j.Recent(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, res, got[0].Result())
	assert.True(t, got[0].Time.Equal(at))
}
