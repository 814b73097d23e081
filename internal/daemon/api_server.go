package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"famcontents/internal/api"
	"famcontents/internal/config"
	"famcontents/internal/logging"
	"famcontents/internal/services"
)

const maxRequestBytes = 4 << 20

type apiServer struct {
	bind    string
	timeout time.Duration
	logger  *slog.Logger
	daemon  *Daemon
	svc     *api.Service

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, svc *api.Service, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(cfg.Paths.APIBind),
		timeout: cfg.RequestTimeout(),
		logger:  logger,
		daemon:  d,
		svc:     svc,
	}
	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generation requests may run up to the request timeout.
		WriteTimeout: srv.timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/generate/{kind}", s.handleGenerate)

	mux.HandleFunc("GET /api/contents", s.handleListContents)
	mux.HandleFunc("POST /api/contents", s.handleCreateContent)
	mux.HandleFunc("GET /api/contents/{id}", s.handleGetContent)
	mux.HandleFunc("PUT /api/contents/{id}", s.handleUpdateContent)
	mux.HandleFunc("DELETE /api/contents/{id}", s.handleDeleteContent)
	mux.HandleFunc("POST /api/contents/{id}/variants/{channel}", s.handleMaterialize)
	mux.HandleFunc("POST /api/contents/{id}/generate", s.handleGenerateAll)

	mux.HandleFunc("GET /api/variants", s.handleListVariants)
	mux.HandleFunc("GET /api/variants/{id}", s.handleGetVariant)
	mux.HandleFunc("POST /api/variants/{id}/status", s.handleTransition)
	mux.HandleFunc("GET /api/variants/{id}/preview", s.handlePreview)
	mux.HandleFunc("POST /api/trash/purge", s.handlePurge)

	mux.HandleFunc("GET /api/task-configs", s.handleListTaskConfigs)
	mux.HandleFunc("GET /api/task-configs/{kind}", s.handleGetTaskConfig)
	mux.HandleFunc("PUT /api/task-configs/{kind}", s.handlePutTaskConfig)

	mux.HandleFunc("POST /api/diff", s.handleDiff)
	mux.HandleFunc("POST /api/proofread", s.handleProofread)
	return s.withRequestContext(mux)
}

// withRequestContext tags every request with an id and bounds it by the
// configured request timeout.
func (s *apiServer) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := services.WithRequestID(r.Context(), id)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.WithContext(ctx, s.log()).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.daemon != nil {
		s.writeJSON(w, http.StatusOK, s.daemon.Status(r.Context()))
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.Status(r.Context()))
}

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.svc.Generate(r.Context(), r.PathValue("kind"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleListContents(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.queryInt(w, r, "limit")
	if !ok {
		return
	}
	resp, err := s.svc.ListContents(r.Context(), r.URL.Query().Get("channel"), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	var req api.ContentRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.svc.CreateContent(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *apiServer) handleGetContent(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.GetContent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req api.ContentRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.svc.UpdateContent(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteContent(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Materialize(r.Context(), r.PathValue("id"), r.PathValue("channel"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleGenerateAll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.GenerateAll(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleListVariants(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := s.queryInt(w, r, "limit")
	if !ok {
		return
	}
	var statuses []string
	for _, raw := range query["status"] {
		statuses = append(statuses, strings.Split(raw, ",")...)
	}
	includeTrashed := false
	if raw := query.Get("include_trashed"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "include_trashed must be a boolean")
			return
		}
		includeTrashed = parsed
	}
	resp, err := s.svc.ListVariants(r.Context(), api.VariantQuery{
		ContentID:      query.Get("content_id"),
		Channel:        query.Get("channel"),
		Statuses:       statuses,
		IncludeTrashed: includeTrashed,
		Limit:          limit,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleGetVariant(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.GetVariant(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req api.TransitionRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.svc.TransitionVariant(r.Context(), r.PathValue("id"), req.Action)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Preview(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "json" {
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, resp.HTML)
}

func (s *apiServer) handlePurge(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.PurgeTrashed(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleListTaskConfigs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.ListTaskConfigs(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleGetTaskConfig(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.TaskConfig(r.Context(), r.PathValue("kind"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handlePutTaskConfig(w http.ResponseWriter, r *http.Request) {
	var req api.TaskConfigRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.svc.PutTaskConfig(r.Context(), r.PathValue("kind"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req api.DiffRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.Diff(req))
}

func (s *apiServer) handleProofread(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.svc.Proofread(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, "request body is empty")
			return false
		}
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *apiServer) queryInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		s.writeError(w, http.StatusBadRequest, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func statusForError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch services.Classify(err) {
	case services.ErrValidation:
		return http.StatusBadRequest
	case services.ErrNotFound:
		return http.StatusNotFound
	case services.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.log()), "api request failed", "api_error",
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
