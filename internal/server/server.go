// Package server exposes the change bridge over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/alexisbeaulieu97/tokenflow/internal/bridge"
	"github.com/alexisbeaulieu97/tokenflow/internal/config"
	"github.com/alexisbeaulieu97/tokenflow/internal/infrastructure/store"
	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
	"github.com/alexisbeaulieu97/tokenflow/internal/ports"
	"github.com/alexisbeaulieu97/tokenflow/internal/preview"
	"github.com/alexisbeaulieu97/tokenflow/internal/relay"
	"github.com/alexisbeaulieu97/tokenflow/internal/token"
	tferrors "github.com/alexisbeaulieu97/tokenflow/pkg/errors"
)

// Dependencies are the collaborators the HTTP layer serves. Hub, Relay,
// Metrics and Snapshots are optional; their routes answer 404 when unset.
// A nil WriteLimiter leaves write routes unthrottled.
type Dependencies struct {
	Service      *bridge.Service
	Hub          *relay.Hub
	Relay        *relay.Relay
	Metrics      http.Handler
	Snapshots    *store.SnapshotStore
	WriteLimiter *rate.Limiter
	Logger       *logger.Logger
}

// Server routes requests to the bridge.
type Server struct {
	deps Dependencies
	log  *logger.Logger
}

// New builds a Server.
func New(deps Dependencies) *Server {
	return &Server{deps: deps, log: deps.Logger.WithField("component", "http")}
}

// Router configures all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.correlation)
	r.Use(s.requestLogger)

	r.Get("/health", s.health)
	r.Get("/surface.css", s.surfaceCSS)
	r.Get("/stats", s.stats)
	r.Get("/a11y", s.accessibility)

	r.Route("/tokens", func(r chi.Router) {
		r.Get("/", s.listTokens)
		r.Get("/{name}", s.getToken)
		r.With(s.throttle).Put("/{name}", s.updateToken)
	})

	r.Get("/export", s.exportDocument)
	r.With(s.throttle).Post("/import", s.importDocument)

	r.Post("/preview/enter", s.enterPreview)
	r.Post("/preview/exit", s.exitPreview)

	if s.deps.Hub != nil {
		r.Handle("/events", s.deps.Hub)
	}
	if s.deps.Relay != nil {
		r.Post("/relay/ack/{id}", s.ack)
	}
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics)
	}
	if s.deps.Snapshots != nil {
		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.listSnapshots)
			r.With(s.throttle).Post("/{name}", s.saveSnapshot)
			r.Get("/{name}/diff", s.diffSnapshot)
			r.With(s.throttle).Post("/{name}/restore", s.restoreSnapshot)
			r.Delete("/{name}", s.deleteSnapshot)
		})
	}
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// correlation adopts the chi request id as the correlation id.
func (s *Server) correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimiddleware.GetReqID(r.Context())
		if id == "" {
			id = ports.GenerateCorrelationID()
		}
		next.ServeHTTP(w, r.WithContext(ports.WithCorrelationID(r.Context(), id)))
	})
}

// throttle rejects write requests beyond the configured rate.
func (s *Server) throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.WriteLimiter != nil && !s.deps.WriteLimiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.respondError(w, http.StatusTooManyRequests, "too many updates, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.WithFields(map[string]any{
			"method":         r.Method,
			"path":           r.URL.Path,
			"status":         ww.Status(),
			"bytes":          ww.BytesWritten(),
			"duration_ms":    float64(time.Since(start).Microseconds()) / 1000,
			"correlation_id": ports.GetCorrelationID(r.Context()),
		}).Debug("http request")
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"status": "healthy", "tokens": s.deps.Service.Registry().Len()})
}

func (s *Server) surfaceCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(preview.RenderProperties(s.deps.Service.Engine().Surface().Snapshot())))
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	engine := s.deps.Service.Engine()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"stats":      engine.Stats(),
		"samples":    engine.Samples(),
		"previewing": engine.Previewing(),
		"budgetMs":   engine.Budget().Milliseconds(),
	})
}

func (s *Server) accessibility(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.deps.Service.Validate(r.Context()))
}

type tokenView struct {
	Name          string   `json:"name"`
	Value         string   `json:"value"`
	Resolved      string   `json:"resolved,omitempty"`
	Domain        string   `json:"domain"`
	StyleKey      string   `json:"styleKey"`
	DependsOn     []string `json:"dependsOn,omitempty"`
	Generates     []string `json:"generates,omitempty"`
	GeneratorID   string   `json:"generatorId,omitempty"`
	Description   string   `json:"description,omitempty"`
	OriginalValue string   `json:"originalValue,omitempty"`
}

func (s *Server) view(tok token.Token) tokenView {
	resolved, _ := s.deps.Service.Registry().Resolve(tok.Name)
	return tokenView{
		Name:          tok.Name,
		Value:         tok.Value,
		Resolved:      resolved,
		Domain:        tok.Domain,
		StyleKey:      tok.StyleKey,
		DependsOn:     tok.Relationships.DependsOn,
		Generates:     tok.Relationships.Generates,
		GeneratorID:   tok.Metadata.GeneratorID,
		Description:   tok.Metadata.Description,
		OriginalValue: tok.Metadata.OriginalValue,
	}
}

func (s *Server) listTokens(w http.ResponseWriter, r *http.Request) {
	reg := s.deps.Service.Registry()

	var tokens []token.Token
	if domain := r.URL.Query().Get("domain"); domain != "" {
		tokens = reg.TokensByDomain(domain)
	} else {
		for _, name := range reg.Names() {
			if tok, ok := reg.Get(name); ok {
				tokens = append(tokens, tok)
			}
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Name < tokens[j].Name })

	views := make([]tokenView, 0, len(tokens))
	for _, tok := range tokens {
		views = append(views, s.view(tok))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"tokens": views, "count": len(views)})
}

func (s *Server) getToken(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tok, ok := s.deps.Service.Registry().Get(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "token not found: "+name)
		return
	}
	s.respondJSON(w, http.StatusOK, s.view(tok))
}

// UpdateTokenRequest is the body of PUT /tokens/{name}.
type UpdateTokenRequest struct {
	Value string `json:"value" validate:"required"`
}

func (s *Server) updateToken(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req UpdateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := config.GetValidator().Struct(req); err != nil {
		s.respondError(w, http.StatusBadRequest, "value is required")
		return
	}

	changes, err := s.deps.Service.NotifyTokenChange(r.Context(), name, req.Value)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"changes":       changes,
		"correlationId": ports.GetCorrelationID(r.Context()),
	})
}

func (s *Server) exportDocument(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.deps.Service.Registry().Export())
}

func (s *Server) importDocument(w http.ResponseWriter, r *http.Request) {
	var doc token.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid document: "+err.Error())
		return
	}
	if err := s.deps.Service.Import(r.Context(), doc); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"tokens": s.deps.Service.Registry().Len()})
}

func (s *Server) enterPreview(w http.ResponseWriter, r *http.Request) {
	entered := s.deps.Service.EnterPreviewMode(r.Context())
	s.respondJSON(w, http.StatusOK, map[string]any{"previewing": true, "changed": entered})
}

func (s *Server) exitPreview(w http.ResponseWriter, r *http.Request) {
	exited := s.deps.Service.ExitPreviewMode(r.Context())
	s.respondJSON(w, http.StatusOK, map[string]any{"previewing": false, "changed": exited})
}

func (s *Server) ack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.deps.Relay.Ack(id) {
		s.respondError(w, http.StatusNotFound, "unknown or expired envelope: "+id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSnapshots(w http.ResponseWriter, _ *http.Request) {
	names, err := s.deps.Snapshots.List()
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"snapshots": names})
}

func (s *Server) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.deps.Snapshots.Save(name, s.deps.Service.Registry().Export()); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"name": name})
}

func (s *Server) restoreSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.deps.Snapshots.Load(name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if err := s.deps.Service.Import(r.Context(), doc); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"name": name, "tokens": s.deps.Service.Registry().Len()})
}

func (s *Server) diffSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.deps.Snapshots.Load(name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	cmp, err := s.deps.Service.Compare(doc, "snapshot/"+name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, cmp)
}

func (s *Server) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Snapshots.Delete(chi.URLParam(r, "name")); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var (
		notFound   *tferrors.TokenNotFoundError
		cycle      *tferrors.CycleError
		config     *tferrors.TokenConfigError
		validation *tferrors.ValidationError
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, store.ErrSnapshotNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &cycle):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &config), errors.As(err, &validation):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, preview.ErrBatchCancelled):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error(err, "request failed")
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error(err, "encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
