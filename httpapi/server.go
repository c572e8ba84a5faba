// Package httpapi exposes the position calculator over HTTP. Every request
// is sized independently; only defaults and history touch shared state.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/config"
	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/risk"
	"github.com/rustyeddy/poscalc/session"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// DefaultsStore reads and writes the stored preferences.
type DefaultsStore interface {
	session.SettingsProvider
	SetDefaults(config.Preferences) error
}

// History lists recorded calculations, newest first.
type History interface {
	Recent(n int) ([]journal.Record, error)
}

type Server struct {
	store    DefaultsStore
	history  History
	recorder session.Recorder
	log      *zap.Logger
	timeout  time.Duration
}

type Option func(*Server)

func WithHistory(h History) Option { return func(s *Server) { s.history = h } }

func WithRecorder(r session.Recorder) Option { return func(s *Server) { s.recorder = r } }

func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.log = l } }

func WithTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

func New(store DefaultsStore, opts ...Option) *Server {
	s := &Server{
		store:   store,
		log:     zap.NewNop(),
		timeout: 15 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes returns the chi router with middleware installed.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Post("/calculate", s.handleCalculate)
	r.Get("/defaults", s.handleGetDefaults)
	r.Put("/defaults", s.handlePutDefaults)
	r.Get("/history", s.handleHistory)

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type calculateResponse struct {
	Result   risk.Result      `json:"result"`
	FeeCost  float64          `json:"fee_cost"`
	Display  risk.Display     `json:"display"`
	Warnings []risk.Violation `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var in risk.TextInputs
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}

	if strings.TrimSpace(in.StopLossAmount) == "" || strings.TrimSpace(in.FeeRate) == "" {
		p, err := s.store.Defaults()
		if err != nil {
			s.log.Error("load defaults", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "defaults unavailable"})
			return
		}
		amount, fee := p.Text()
		if strings.TrimSpace(in.StopLossAmount) == "" {
			in.StopLossAmount = amount
		}
		if strings.TrimSpace(in.FeeRate) == "" {
			in.FeeRate = fee
		}
	}

	res, err := risk.Calculate(in)
	if err != nil {
		writeCalcError(w, err)
		return
	}

	if s.recorder != nil {
		if err := s.recorder.RecordResult(res); err != nil {
			s.log.Warn("record calculation", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, calculateResponse{
		Result:   res,
		FeeCost:  res.FeeCost(),
		Display:  res.Display(),
		Warnings: risk.Review(res),
	})
}

func writeCalcError(w http.ResponseWriter, err error) {
	var ie *risk.InputError
	switch {
	case errors.As(err, &ie):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid_input", Field: ie.Field, Message: err.Error()})
	case errors.Is(err, risk.ErrInvalidResult):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid_result", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: err.Error()})
	}
}

func (s *Server) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Defaults()
	if err != nil {
		s.log.Error("load defaults", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "defaults unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutDefaults(w http.ResponseWriter, r *http.Request) {
	var p config.Preferences
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	if err := p.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	if err := s.store.SetDefaults(p); err != nil {
		s.log.Error("save defaults", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "could not save defaults"})
		return
	}
	s.log.Info("defaults updated",
		zap.Float64("stop_loss_amount", p.StopLossAmount),
		zap.Float64("fee_rate", p.FeeRate))
	writeJSON(w, http.StatusOK, p)
}

type historyEntry struct {
	ID      string       `json:"id"`
	Time    time.Time    `json:"time"`
	Result  risk.Result  `json:"result"`
	Display risk.Display `json:"display"`
	Note    string       `json:"note,omitempty"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "journal disabled"})
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	recs, err := s.history.Recent(limit)
	if err != nil {
		s.log.Error("query history", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "history unavailable"})
		return
	}

	out := make([]historyEntry, 0, len(recs))
	for _, rec := range recs {
		res := rec.Result()
		out = append(out, historyEntry{
			ID:      rec.ID,
			Time:    rec.Time,
			Result:  res,
			Display: res.Display(),
			Note:    rec.Note,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe runs the server until ctx is done, then shuts down within
// shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration, log *zap.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errc
}
