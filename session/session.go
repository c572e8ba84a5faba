// Package session holds one user's calculation state: the four text fields
// and the last successful result. Defaults come from a SettingsProvider
// rather than a package-level singleton.
package session

import (
	"fmt"
	"sync"

	"github.com/rustyeddy/poscalc/config"
	"github.com/rustyeddy/poscalc/risk"
)

// SettingsProvider supplies the default stop-loss amount and fee rate.
type SettingsProvider interface {
	Defaults() (config.Preferences, error)
}

// Recorder is told about every successful calculation.
type Recorder interface {
	RecordResult(risk.Result) error
}

// Static is a SettingsProvider with fixed values.
type Static config.Preferences

func (s Static) Defaults() (config.Preferences, error) {
	return config.Preferences(s), nil
}

type Session struct {
	mu sync.Mutex

	settings SettingsProvider
	recorder Recorder

	inputs    risk.TextInputs
	result    risk.Result
	hasResult bool
}

type Option func(*Session)

// WithRecorder journals each successful calculation.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// New creates a session seeded from settings. If settings is nil or fails,
// the built-in defaults are used and the error is returned alongside a
// usable session.
func New(settings SettingsProvider, opts ...Option) (*Session, error) {
	s := &Session{settings: settings}
	for _, o := range opts {
		o(s)
	}
	err := s.Reseed()
	return s, err
}

// Reseed reloads stop-loss amount and fee rate from the settings provider.
// Entry and stop-loss text are left alone.
func (s *Session) Reseed() error {
	p := config.Preferences{
		StopLossAmount: risk.DefaultStopLossAmount,
		FeeRate:        risk.DefaultFeeRate,
	}
	var err error
	if s.settings != nil {
		var got config.Preferences
		got, err = s.settings.Defaults()
		if err == nil {
			p = got
		} else {
			err = fmt.Errorf("load defaults: %w", err)
		}
	}

	amount, fee := p.Text()

	s.mu.Lock()
	s.inputs.StopLossAmount = amount
	s.inputs.FeeRate = fee
	s.mu.Unlock()

	return err
}

func (s *Session) SetEntryPrice(v string) {
	s.mu.Lock()
	s.inputs.EntryPrice = v
	s.mu.Unlock()
}

func (s *Session) SetStopLossPrice(v string) {
	s.mu.Lock()
	s.inputs.StopLossPrice = v
	s.mu.Unlock()
}

func (s *Session) SetStopLossAmount(v string) {
	s.mu.Lock()
	s.inputs.StopLossAmount = v
	s.mu.Unlock()
}

func (s *Session) SetFeeRate(v string) {
	s.mu.Lock()
	s.inputs.FeeRate = v
	s.mu.Unlock()
}

// Inputs returns a copy of the current text fields.
func (s *Session) Inputs() risk.TextInputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs
}

// Ready reports whether entry and stop-loss are set to positive numbers,
// i.e. whether a calculate action should be enabled.
func (s *Session) Ready() bool {
	in := s.Inputs()
	_, err := risk.Parse(risk.TextInputs{
		EntryPrice:     in.EntryPrice,
		StopLossPrice:  in.StopLossPrice,
		StopLossAmount: "0",
		FeeRate:        "0",
	})
	return err == nil
}

// Result returns the last successful result, if any.
func (s *Session) Result() (risk.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.hasResult
}

// Calculate runs the calculator on the current inputs. On failure the
// previous result is kept and the error is returned. A recorder error does
// not undo the new result.
func (s *Session) Calculate() (risk.Result, error) {
	s.mu.Lock()
	r, err := risk.Calculate(s.inputs)
	if err != nil {
		s.mu.Unlock()
		return risk.Result{}, err
	}
	s.result = r
	s.hasResult = true
	rec := s.recorder
	s.mu.Unlock()

	if rec != nil {
		if err := rec.RecordResult(r); err != nil {
			return r, fmt.Errorf("record result: %w", err)
		}
	}
	return r, nil
}

// Clear drops the current result and the entry / stop-loss text.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.EntryPrice = ""
	s.inputs.StopLossPrice = ""
	s.result = risk.Result{}
	s.hasResult = false
}
