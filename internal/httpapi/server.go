package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Ashmit111/secure-scan/internal/domain"
	apimw "github.com/Ashmit111/secure-scan/internal/httpapi/middleware"
	"github.com/Ashmit111/secure-scan/internal/metrics"
	"github.com/Ashmit111/secure-scan/internal/monitor"
	"github.com/Ashmit111/secure-scan/internal/store"
)

type Server struct {
	Logger *zap.Logger
	Ctrl   *monitor.Controller
	Store  store.StatusStore
}

func NewServer(l *zap.Logger, ctrl *monitor.Controller, st store.StatusStore) *Server {
	return &Server{Logger: l, Ctrl: ctrl, Store: st}
}

// Router wires the API. Rate limits are requests per minute with a burst;
// zero disables a limiter, empty key sets disable auth (dev).
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet},
			AllowedHeaders: []string{"Authorization", "X-API-Key"},
		}))
	} else {
		r.Use(cors.AllowAll().Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// read-style endpoints: any key
	r.Group(func(g chi.Router) {
		g.Use(apimw.RequireAny(keys))
		g.Use(apimw.RateLimit(pubRPM, pubBurst))
		g.Get("/api/monitor", s.handleCheck)
		g.Get("/api/sites", s.handleListSites)
		g.Get("/api/sites/history", s.handleHistory)
	})

	// tracked checks mutate the store and may alert: admin key
	r.Group(func(g chi.Router) {
		g.Use(apimw.RequireAdmin(keys))
		g.Use(apimw.RateLimit(admRPM, admBurst))
		g.Get("/api/monitor/track", s.handleTrack)
	})

	return r
}

// handleCheck probes once without side effects. A down target is still a
// 200: the monitor worked, the target did not.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Ctrl.Check(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeValidationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleTrack runs a persisted cycle. Only a persistence failure surfaces as
// a server error; it must stay distinguishable from "the target is down".
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rep, err := s.Ctrl.Track(r.Context(), q.Get("url"), q.Get("contact"))
	if err != nil {
		if errors.Is(err, monitor.ErrEmptyURL) || errors.Is(err, monitor.ErrInvalidURL) {
			writeValidationError(w, err)
			return
		}
		s.Logger.Error("track_persist_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not record check"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type siteView struct {
	URL          string `json:"url"`
	Status       string `json:"status"`
	ResponseTime string `json:"responseTime"`
	LastChecked  string `json:"lastChecked"`
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.Store.List(r.Context())
	if err != nil {
		s.Logger.Error("list_sites_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list error"})
		return
	}
	out := make([]siteView, 0, len(sites))
	for _, site := range sites {
		out = append(out, siteView{
			URL:          site.URL,
			Status:       string(site.Status),
			ResponseTime: site.ResponseTime,
			LastChecked:  site.LastChecked.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type historyEntryView struct {
	Timestamp    string `json:"timestamp"`
	Status       string `json:"status"`
	ResponseTime string `json:"responseTime"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := monitor.NormalizeURL(q.Get("url"))
	if err != nil {
		writeValidationError(w, err)
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		limit = atoiClamped(v, store.DefaultHistoryLimit)
	}

	entries, err := s.Store.History(r.Context(), target, limit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "website not tracked"})
			return
		}
		s.Logger.Error("history_error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history error"})
		return
	}

	out := make([]historyEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryView{
			Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
			Status:       string(e.Status),
			ResponseTime: domain.FormatLatency(e.ResponseTime, e.Reached),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeValidationError(w http.ResponseWriter, err error) {
	msg := "bad request"
	switch {
	case errors.Is(err, monitor.ErrEmptyURL):
		msg = "URL is required"
	case errors.Is(err, monitor.ErrInvalidURL):
		msg = "Invalid URL format"
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func atoiClamped(v string, max int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > max {
		return max
	}
	return n
}
