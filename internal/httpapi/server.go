// Package httpapi exposes the quiz engine as a JSON HTTP API.
//
// Routes:
//   - GET    /health
//   - GET    /counts              progress counters and pool sizes per mode
//   - GET    /wrong?limit=N       most missed words
//   - POST   /session             start a run {"mode":"normal"}
//   - GET    /session             current state
//   - DELETE /session             abandon the run
//   - POST   /session/input       {"text":"ca"}
//   - POST   /session/choice      {"value":"猫"}
//   - POST   /session/spelling    {"text":"cat"}
//   - POST   /session/advance
//   - POST   /session/end
//   - GET    /session/summary
//   - POST   /progress/reset      {"confirm":true}
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/wordmonster/internal/model"
	"github.com/verte-zerg/wordmonster/internal/pool"
	"github.com/verte-zerg/wordmonster/internal/session"
	"github.com/verte-zerg/wordmonster/internal/stats"
)

// Server serializes HTTP requests onto a single engine.
type Server struct {
	r           *chi.Mux
	log         zerolog.Logger
	defaultMode model.Mode
	mu          sync.Mutex // guards engine
	engine      *session.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultMode sets the mode used by POST /session when none is given.
func WithDefaultMode(mode model.Mode) Option {
	return func(s *Server) { s.defaultMode = mode }
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *session.Engine, logger zerolog.Logger, opts ...Option) *Server {
	s := &Server{r: chi.NewRouter(), log: logger, engine: engine}
	for _, opt := range opts {
		opt(s)
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger(logger))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/counts", s.handleCounts)
	s.r.Get("/wrong", s.handleWrong)
	s.r.Route("/session", func(r chi.Router) {
		r.Post("/", s.handleStart)
		r.Get("/", s.handleState)
		r.Delete("/", s.handleReturnHome)
		r.Post("/input", s.handleInput)
		r.Post("/choice", s.handleChoice)
		r.Post("/spelling", s.handleSpelling)
		r.Post("/advance", s.handleAdvance)
		r.Post("/end", s.handleEnd)
		r.Get("/summary", s.handleSummary)
	})
	s.r.Post("/progress/reset", s.handleReset)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Router exposes the router for http.Server and tests.
func (s *Server) Router() chi.Router { return s.r }

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}

type countsRes struct {
	Total      int            `json:"total"`
	Mastered   int            `json:"mastered"`
	Unmastered int            `json:"unmastered"`
	Wrong      int            `json:"wrong"`
	Pools      map[string]int `json:"pools"`
}

func (s *Server) counts() countsRes {
	words := s.engine.Words()
	mastery, wrong := s.engine.Progress().Snapshot()
	c := stats.CountWords(words, mastery, wrong)
	pools := make(map[string]int, len(model.Modes))
	for _, mode := range model.Modes {
		pools[mode.String()] = pool.Size(mode, words, mastery, wrong)
	}
	return countsRes{
		Total:      c.Total,
		Mastered:   c.Mastered,
		Unmastered: c.Unmastered,
		Wrong:      c.Wrong,
		Pools:      pools,
	}
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.counts())
}

type wrongEntry struct {
	EN    string `json:"en"`
	ZH    string `json:"zh"`
	Count int    `json:"count"`
}

func (s *Server) handleWrong(w http.ResponseWriter, r *http.Request) {
	limit := stats.DefaultWrongLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = n
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, wrong := s.engine.Progress().Snapshot()
	entries := stats.WrongList(s.engine.Words(), wrong, limit)
	out := make([]wrongEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, wrongEntry{EN: e.Word.EN, ZH: e.Word.ZH, Count: e.Count})
	}
	writeJSON(w, http.StatusOK, out)
}

type startReq struct {
	Mode string `json:"mode"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	mode := s.defaultMode
	if strings.TrimSpace(req.Mode) != "" {
		var err error
		if mode, err = model.ParseMode(req.Mode); err != nil {
			writeError(w, http.StatusBadRequest, "bad_mode")
			return
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Start(mode); err != nil {
		if errors.Is(err, session.ErrNotEnoughWords) {
			writeError(w, http.StatusConflict, "not_enough_words")
			return
		}
		s.log.Error().Err(err).Msg("start run")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	writeJSON(w, http.StatusOK, newStateView(s.engine.State()))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, newStateView(s.engine.State()))
}

func (s *Server) handleReturnHome(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ReturnHome()
	writeJSON(w, http.StatusOK, newStateView(s.engine.State()))
}

type textReq struct {
	Text string `json:"text"`
}

type choiceReq struct {
	Value string `json:"value"`
}

type answerRes struct {
	Outcome string    `json:"outcome"`
	State   stateView `json:"state"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req textReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.SetInput(req.Text)
	writeJSON(w, http.StatusOK, newStateView(s.engine.State()))
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome := s.engine.SubmitChoice(req.Value)
	writeJSON(w, http.StatusOK, answerRes{Outcome: outcome.String(), State: newStateView(s.engine.State())})
}

func (s *Server) handleSpelling(w http.ResponseWriter, r *http.Request) {
	var req textReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome := s.engine.SubmitSpelling(req.Text)
	writeJSON(w, http.StatusOK, answerRes{Outcome: outcome.String(), State: newStateView(s.engine.State())})
}

type stepRes struct {
	OK    bool      `json:"ok"`
	State stateView `json:"state"`
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.engine.Advance()
	writeJSON(w, http.StatusOK, stepRes{OK: ok, State: newStateView(s.engine.State())})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.engine.EndRun()
	writeJSON(w, http.StatusOK, stepRes{OK: ok, State: newStateView(s.engine.State())})
}

type summaryRes struct {
	RunID      string `json:"runId"`
	Mode       string `json:"mode"`
	Score      int    `json:"score"`
	PoolSize   int    `json:"poolSize"`
	HeartsLeft int    `json:"heartsLeft"`
	GameOver   bool   `json:"gameOver"`
	Mastered   int    `json:"mastered"`
	Total      int    `json:"total"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.engine.Summary()
	if !ok {
		writeError(w, http.StatusNotFound, "run_not_ended")
		return
	}
	writeJSON(w, http.StatusOK, summaryRes{
		RunID:      sum.RunID,
		Mode:       sum.Mode.String(),
		Score:      sum.Score,
		PoolSize:   sum.PoolSize,
		HeartsLeft: sum.HeartsLeft,
		GameOver:   sum.GameOver,
		Mastered:   sum.Mastered,
		Total:      sum.Total,
	})
}

type resetReq struct {
	Confirm bool `json:"confirm"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "confirmation_required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ResetMastery()
	writeJSON(w, http.StatusOK, s.counts())
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
