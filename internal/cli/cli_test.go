package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/poscalc/config"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.SaveToFile(path))
	return path
}

func sqliteConfig(t *testing.T) string {
	t.Helper()

	db := filepath.Join(t.TempDir(), "calc.sqlite")
	return tempConfig(t, func(c *config.Config) {
		c.Journal = config.JournalConfig{Type: "sqlite", DBPath: db}
	})
}

func TestCalcWithDefaults(t *testing.T) {
	cfg := tempConfig(t, nil)

	out, err := run(t, "", "--config", cfg, "calc", "--entry", "100", "--stop", "95")
	require.NoError(t, err)
	assert.Contains(t, out, "196.08")
	assert.Contains(t, out, "105.00")
	assert.Contains(t, out, "0.20")
}

func TestCalcMissingConfigUsesBuiltins(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "missing.yaml")

	out, err := run(t, "", "--config", cfg, "calc", "-e", "100", "-s", "95")
	require.NoError(t, err)
	assert.Contains(t, out, "196.08")
}

func TestCalcJSON(t *testing.T) {
	cfg := tempConfig(t, nil)

	out, err := run(t, "", "--config", cfg, "calc",
		"-e", "50000", "-s", "49000", "-a", "20", "-f", "0.05", "--json")
	require.NoError(t, err)

	var got resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "975.61", got.Display.InvestmentAmount)
	assert.Equal(t, 51000.0, got.Result.TakeProfitPrice)
	assert.InDelta(t, 0.0005, got.Result.Fee, 1e-15)
	assert.Empty(t, got.ID)
}

func TestCalcUsesStoredDefaults(t *testing.T) {
	cfg := tempConfig(t, func(c *config.Config) {
		c.Defaults = config.Preferences{StopLossAmount: 20, FeeRate: 0.05}
	})

	out, err := run(t, "", "--config", cfg, "calc", "-e", "50000", "-s", "49000")
	require.NoError(t, err)
	assert.Contains(t, out, "975.61")
}

func TestCalcErrors(t *testing.T) {
	cfg := tempConfig(t, nil)

	_, err := run(t, "", "--config", cfg, "calc", "-e", "100", "-s", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stop_loss_price")

	_, err = run(t, "", "--config", cfg, "calc", "-e", "100", "-s", "100", "-f", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid result")

	_, err = run(t, "", "--config", cfg, "calc", "-e", "100")
	require.Error(t, err)
}

func TestCalcWarnings(t *testing.T) {
	cfg := tempConfig(t, nil)

	out, err := run(t, "", "--config", cfg, "calc", "-e", "100", "-s", "95", "-a", "-10")
	require.NoError(t, err)
	assert.Contains(t, out, "NON_POSITIVE_AMOUNT")
}

func TestCalcRecordNeedsJournal(t *testing.T) {
	cfg := tempConfig(t, nil)

	_, err := run(t, "", "--config", cfg, "calc", "-e", "100", "-s", "95", "--record")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal.type")
}

func TestCalcRecordAndHistory(t *testing.T) {
	cfg := sqliteConfig(t)

	out, err := run(t, "", "--config", cfg, "calc", "-e", "100", "-s", "95", "--record", "--note", "range low")
	require.NoError(t, err)
	m := regexp.MustCompile(`Recorded\s+(\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2)
	recID := m[1]

	out, err = run(t, "", "--config", cfg, "history", "show", recID)
	require.NoError(t, err)
	assert.Contains(t, out, ":ID: "+recID)
	assert.Contains(t, out, ":INVESTMENT_AMOUNT: 196.08")
	assert.Contains(t, out, ":NOTE: range low")

	out, err = run(t, "", "--config", cfg, "history", "list", "-n", "5")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "** Position:"))

	out, err = run(t, "", "--config", cfg, "history", "today")
	require.NoError(t, err)
	assert.Contains(t, out, recID)

	out, err = run(t, "", "--config", cfg, "history", "day", "1999-01-01")
	require.NoError(t, err)
	assert.NotContains(t, out, recID)

	_, err = run(t, "", "--config", cfg, "history", "day", "yesterday")
	assert.Error(t, err)
}

func TestHistoryNeedsSQLite(t *testing.T) {
	cfg := tempConfig(t, nil)

	_, err := run(t, "", "--config", cfg, "history", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestSessionKeepsPreviousResult(t *testing.T) {
	cfg := tempConfig(t, nil)

	in := strings.Join([]string{
		"100 95",
		"100",      // stop missing: nothing new
		"abc 95",   // not a number: nothing new
		"100 100 10 0",
		":show",
		":quit",
		"50000 49000 20 0.05", // never read
	}, "\n")

	out, err := run(t, in, "--config", cfg, "session", "--quiet")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "196.08"), out)
	assert.NotContains(t, out, "975.61")
}

func TestSessionDefaultsReload(t *testing.T) {
	cfg := tempConfig(t, nil)

	in := "50000 49000\n:defaults\n"
	out, err := run(t, in, "--config", cfg, "session", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "amount=10 fee=0.1%")
}

func TestSessionRecordsToJournal(t *testing.T) {
	cfg := sqliteConfig(t)

	_, err := run(t, "100 95\n50000 49000 20 0.05\n", "--config", cfg, "session", "-q")
	require.NoError(t, err)

	out, err := run(t, "", "--config", cfg, "history", "list")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "** Position:"))
	// newest first
	assert.Less(t, strings.Index(out, "50000.00"), strings.Index(out, "-> 95.00"))
}

func TestPrefsSetAndShow(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "sub", "config.yaml")

	out, err := run(t, "", "--config", cfg, "prefs", "set", "--amount", "25", "--fee", "0.04")
	require.NoError(t, err)
	assert.Contains(t, out, "Defaults saved")

	out, err = run(t, "", "--config", cfg, "prefs", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Stop-loss amount: 25")
	assert.Contains(t, out, "Fee rate:         0.04%")

	_, err = run(t, "", "--config", cfg, "prefs", "set", "--fee", "abc")
	assert.Error(t, err)

	_, err = run(t, "", "--config", cfg, "prefs", "set")
	assert.Error(t, err)

	out, err = run(t, "", "--config", cfg, "calc", "-e", "100", "-s", "95", "--json")
	require.NoError(t, err)
	var got resultJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 25.0, got.Result.StopLossAmount)
}

func TestPrefsInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poscalc.yaml")

	out, err := run(t, "", "--config", path, "prefs", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	_, err = run(t, "", "--config", path, "prefs", "init")
	require.Error(t, err)

	_, err = run(t, "", "--config", path, "prefs", "init", "--force")
	require.NoError(t, err)

	out, err = run(t, "", "--config", path, "prefs", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("journal:\n  type: csv\n"), 0o644))
	_, err = run(t, "", "prefs", "validate", "--file", bad)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--config", filepath.Join(t.TempDir(), "x.yaml"), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "poscalc version")
}

func TestDayBounds(t *testing.T) {
	t.Parallel()

	start, end, err := dayBounds(time.UTC, "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), end)

	_, _, err = dayBounds(time.UTC, "03/01/2025")
	assert.Error(t, err)
}
