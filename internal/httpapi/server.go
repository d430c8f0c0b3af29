package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/ruok/internal/domain"
	apimw "github.com/hamed0406/ruok/internal/httpapi/middleware"
	"github.com/hamed0406/ruok/internal/repo"
)

// Server exposes the status table read-only over HTTP.
type Server struct {
	Logger   *zap.Logger
	Services domain.Services
	Status   repo.StatusStore
	Gatherer prometheus.Gatherer
}

func NewServer(l *zap.Logger, services domain.Services, status repo.StatusStore, g prometheus.Gatherer) *Server {
	return &Server{Logger: l, Services: services, Status: status, Gatherer: g}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(rpm, burst))
		r.Use(apimw.RequireKey(keys))
		r.Get("/api/services", s.handleListServices)
		r.Get("/api/services/{name}", s.handleGetService)
	})

	return r
}

type serviceView struct {
	Name          string       `json:"name"`
	URL           string       `json:"url"`
	Interval      string       `json:"interval"`
	Notifications []string     `json:"notifications"`
	State         domain.State `json:"state"`
	Probes        int64        `json:"probes"`
	CheckedAt     *time.Time   `json:"checked_at"`
	ChangedAt     *time.Time   `json:"changed_at"`
}

func (s *Server) view(st domain.ServiceStatus) serviceView {
	d := s.Services[st.Service]
	v := serviceView{
		Name:          st.Service,
		URL:           d.URL,
		Interval:      d.Interval.String(),
		Notifications: d.Notifications,
		State:         st.State,
		Probes:        st.Probes,
	}
	if v.Notifications == nil {
		v.Notifications = []string{}
	}
	if !st.CheckedAt.IsZero() {
		t := st.CheckedAt
		v.CheckedAt = &t
	}
	if !st.ChangedAt.IsZero() {
		t := st.ChangedAt
		v.ChangedAt = &t
	}
	return v
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Status.List(r.Context())
	if err != nil {
		s.Logger.Warn("api_list_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	out := make([]serviceView, 0, len(rows))
	for _, st := range rows {
		out = append(out, s.view(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	st, err := s.Status.Get(r.Context(), name)
	if errors.Is(err, repo.ErrUnknownService) {
		writeError(w, http.StatusNotFound, "unknown service")
		return
	}
	if err != nil {
		s.Logger.Warn("api_get_error", zap.String("service", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get error")
		return
	}
	writeJSON(w, http.StatusOK, s.view(st))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
