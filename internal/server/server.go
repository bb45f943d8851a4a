// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toolverse/internal/config"
	"github.com/jeranaias/toolverse/internal/history"
	"github.com/jeranaias/toolverse/internal/tools"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = "127.0.0.1:8787"

	// DefaultMaxBodyBytes caps uploads when no limit is configured.
	DefaultMaxBodyBytes = 64 << 20

	// maxMemory is how much of a multipart form is held in memory before
	// spilling to temporary files.
	maxMemory = 32 << 20
)

// Error types returned in the JSON error envelope.
const (
	errBadRequest   = "bad_request"
	errValidation   = "validation"
	errProcessing   = "processing"
	errNotFound     = "not_found"
	errUnauthorized = "unauthorized"
	errRateLimited  = "rate_limited"
	errTooLarge     = "too_large"
	errInternal     = "internal"
)

// ============================================================================
// OPTIONS
// ============================================================================

// Options configures a Server.
type Options struct {
	Addr          string
	RatePerSecond float64
	Burst         int
	MaxBodyBytes  int64
	Token         string
	Version       string
	Logger        zerolog.Logger
}

// OptionsFromConfig maps the [server] config section to Options.
func OptionsFromConfig(c config.ServerConfig) Options {
	return Options{
		Addr:          c.Addr,
		RatePerSecond: c.RatePerSecond,
		Burst:         c.Burst,
		MaxBodyBytes:  int64(c.MaxBodyMB) << 20,
		Token:         c.Token,
		Logger:        zerolog.Nop(),
	}
}

// ============================================================================
// SERVER STATS
// ============================================================================

// ServerStats tracks request counts since start.
type ServerStats struct {
	TotalRequests int64     `json:"total_requests"`
	ToolRuns      int64     `json:"tool_runs"`
	Failures      int64     `json:"failures"`
	StartTime     time.Time `json:"start_time"`
}

// NewServerStats creates a new ServerStats instance.
func NewServerStats() *ServerStats {
	return &ServerStats{StartTime: time.Now()}
}

func (s *ServerStats) recordRequest() {
	atomic.AddInt64(&s.TotalRequests, 1)
}

func (s *ServerStats) recordRun(failed bool) {
	atomic.AddInt64(&s.ToolRuns, 1)
	if failed {
		atomic.AddInt64(&s.Failures, 1)
	}
}

// GetStats returns a copy of the current stats.
func (s *ServerStats) GetStats() ServerStats {
	return ServerStats{
		TotalRequests: atomic.LoadInt64(&s.TotalRequests),
		ToolRuns:      atomic.LoadInt64(&s.ToolRuns),
		Failures:      atomic.LoadInt64(&s.Failures),
		StartTime:     s.StartTime,
	}
}

// Uptime returns how long the server has been running.
func (s *ServerStats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server exposes the tool registry over HTTP.
type Server struct {
	opts    Options
	exec    *tools.Executor
	history *history.Store
	router  *http.ServeMux
	stats   *ServerStats
	limiter *RateLimiter
	logger  zerolog.Logger

	mu     sync.Mutex
	server *http.Server
}

// New creates a Server that runs tools through exec.
func New(exec *tools.Executor, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		opts:    opts,
		exec:    exec,
		router:  http.NewServeMux(),
		stats:   NewServerStats(),
		limiter: NewRateLimiter(opts.RatePerSecond, opts.Burst),
		logger:  opts.Logger.With().Str("component", "server").Logger(),
	}
	s.setupRoutes()
	return s
}

// WithHistory enables GET /api/history backed by store.
func (s *Server) WithHistory(store *history.Store) *Server {
	s.history = store
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /api/tools", s.handleListTools)
	s.router.HandleFunc("GET /api/tools/{name}", s.handleDescribeTool)
	s.router.HandleFunc("POST /api/tools/{name}", s.handleRunTool)
	s.router.HandleFunc("GET /api/stats", s.handleStats)
	s.router.HandleFunc("GET /api/history", s.handleHistory)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
		s.countRequests,
		RateLimitMiddleware(s.limiter),
		AuthMiddleware(s.opts.Token, s.logger),
		MaxBodyMiddleware(s.opts.MaxBodyBytes),
	)(s.router)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.stats.recordRequest()
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// TOOL DESCRIPTIONS
// ============================================================================

// ParamInfo describes one tool parameter.
type ParamInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Required    bool        `json:"required"`
	Description string      `json:"description,omitempty"`
	Default     interface{} `json:"default,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Multiple    bool        `json:"multiple,omitempty"`
}

// ToolInfo describes a tool for API clients.
type ToolInfo struct {
	Name        string      `json:"name"`
	Aliases     []string    `json:"aliases,omitempty"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Usage       string      `json:"usage,omitempty"`
	Parameters  []ParamInfo `json:"parameters"`
}

func describe(t *tools.Tool) ToolInfo {
	info := ToolInfo{
		Name:        t.Name,
		Aliases:     t.Aliases,
		Category:    string(t.Category),
		Description: t.Description,
		Usage:       t.Usage,
		Parameters:  make([]ParamInfo, 0, len(t.Schema.Parameters)),
	}
	for _, p := range t.Schema.Parameters {
		info.Parameters = append(info.Parameters, ParamInfo{
			Name:        p.Name,
			Type:        p.Type,
			Required:    p.Required,
			Description: p.Description,
			Default:     p.Default,
			Enum:        p.Enum,
			Min:         p.Min,
			Max:         p.Max,
			Multiple:    p.Multiple,
		})
	}
	return info
}

// handleListTools handles GET /api/tools[?category=finance].
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	reg := s.exec.Registry()
	list := reg.All()
	if c := r.URL.Query().Get("category"); c != "" {
		list = reg.ByCategory(tools.Category(strings.ToLower(c)))
	}

	out := make([]ToolInfo, 0, len(list))
	for _, t := range list {
		out = append(out, describe(t))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tools": out, "count": len(out)})
}

// handleDescribeTool handles GET /api/tools/{name}.
func (s *Server) handleDescribeTool(w http.ResponseWriter, r *http.Request) {
	tool := s.exec.Registry().Get(r.PathValue("name"))
	if tool == nil {
		writeError(w, http.StatusNotFound, errNotFound, "unknown tool: "+r.PathValue("name"), "")
		return
	}
	writeJSON(w, http.StatusOK, describe(tool))
}

// ============================================================================
// TOOL EXECUTION
// ============================================================================

// RunRequest is the JSON body of POST /api/tools/{name}. File data is
// base64 in JSON.
type RunRequest struct {
	Params map[string]interface{} `json:"params"`
	Files  []FileUpload           `json:"files,omitempty"`
}

// FileUpload is one input file for a file parameter.
type FileUpload struct {
	Param string `json:"param"`
	Name  string `json:"name"`
	Data  []byte `json:"data"`
}

// ArtifactInfo is a produced file in a RunResponse.
type ArtifactInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Data        []byte `json:"data"`
}

// RunResponse is the JSON result of a successful run.
type RunResponse struct {
	Tool       string         `json:"tool"`
	Status     string         `json:"status"`
	Output     string         `json:"output"`
	Data       interface{}    `json:"data,omitempty"`
	Artifacts  []ArtifactInfo `json:"artifacts"`
	DurationMs int64          `json:"duration_ms"`
}

// handleRunTool handles POST /api/tools/{name}. The body is either JSON
// (RunRequest) or multipart/form-data where plain fields are parameters
// and file parts are files. ?download=1 returns the artifact itself, or a
// zip when a run produces several.
func (s *Server) handleRunTool(w http.ResponseWriter, r *http.Request) {
	tool := s.exec.Registry().Get(r.PathValue("name"))
	if tool == nil {
		writeError(w, http.StatusNotFound, errNotFound, "unknown tool: "+r.PathValue("name"), "")
		return
	}

	call, err := decodeCall(r, tool)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), "")
			return
		}
		var v *tools.ValidationError
		if errors.As(err, &v) {
			writeError(w, http.StatusUnprocessableEntity, errValidation, v.Message, v.Param)
			return
		}
		writeError(w, http.StatusBadRequest, errBadRequest, err.Error(), "")
		return
	}

	result, err := s.exec.Execute(r.Context(), call)
	s.stats.recordRun(err != nil)
	if err != nil {
		var v *tools.ValidationError
		switch {
		case errors.As(err, &v):
			writeError(w, http.StatusUnprocessableEntity, errValidation, v.Message, v.Param)
		case tools.IsUnknownTool(err):
			writeError(w, http.StatusNotFound, errNotFound, err.Error(), "")
		default:
			writeError(w, http.StatusInternalServerError, errProcessing, err.Error(), "")
		}
		return
	}

	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		s.writeArtifacts(w, tool.Name, result.Artifacts)
		return
	}

	resp := RunResponse{
		Tool:       tool.Name,
		Status:     tools.StatusOK,
		Output:     result.Output,
		Data:       result.Data,
		Artifacts:  make([]ArtifactInfo, 0, len(result.Artifacts)),
		DurationMs: result.Duration.Milliseconds(),
	}
	for _, a := range result.Artifacts {
		resp.Artifacts = append(resp.Artifacts, ArtifactInfo{
			Name:        a.Name,
			ContentType: a.ContentType,
			Size:        a.Size(),
			Data:        a.Data,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeCall(r *http.Request, tool *tools.Tool) (tools.Call, error) {
	call := tools.Call{Name: tool.Name, Params: map[string]interface{}{}, Files: map[string]tools.File{}}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return call, unwrapBodyError(err, "invalid multipart body")
		}
		defer r.MultipartForm.RemoveAll()

		raw := make(map[string]string)
		for name, values := range r.MultipartForm.Value {
			raw[name] = strings.Join(values, ",")
		}
		params, err := tool.ParseArgs(raw)
		if err != nil {
			return call, err
		}
		call.Params = params

		for name, headers := range r.MultipartForm.File {
			for i, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					return call, fmt.Errorf("reading upload %q: %w", fh.Filename, err)
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return call, unwrapBodyError(err, "reading upload")
				}
				call.Files[tools.FileKey(name, i)] = tools.File{Name: fh.Filename, Data: data}
			}
		}

	case "application/json", "":
		var req RunRequest
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return call, nil
			}
			return call, unwrapBodyError(err, "invalid JSON body")
		}
		if req.Params != nil {
			call.Params = req.Params
		}
		counts := make(map[string]int)
		for _, f := range req.Files {
			if f.Param == "" {
				return call, &tools.ValidationError{Param: "files", Message: "each file needs a param name"}
			}
			call.Files[tools.FileKey(f.Param, counts[f.Param])] = tools.File{Name: f.Name, Data: f.Data}
			counts[f.Param]++
		}

	default:
		return call, fmt.Errorf("unsupported content type %q", mediaType)
	}
	return call, nil
}

func unwrapBodyError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return tooLarge
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *Server) writeArtifacts(w http.ResponseWriter, tool string, artifacts []tools.Artifact) {
	switch len(artifacts) {
	case 0:
		writeError(w, http.StatusNotFound, errNotFound, tool+" produced no files to download", "")
		return
	case 1:
		a := artifacts[0]
		w.Header().Set("Content-Type", a.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
		w.Header().Set("Content-Length", strconv.Itoa(a.Size()))
		w.WriteHeader(http.StatusOK)
		w.Write(a.Data)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, a := range artifacts {
		f, err := zw.Create(a.Name)
		if err == nil {
			_, err = f.Write(a.Data)
		}
		if err != nil {
			s.logger.Error().Err(err).Str("tool", tool).Msg("building zip")
			writeError(w, http.StatusInternalServerError, errInternal, "could not package artifacts", "")
			return
		}
	}
	if err := zw.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, errInternal, "could not package artifacts", "")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": tool + ".zip"}))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ============================================================================
// HEALTH, STATS AND HISTORY
// ============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Tools         int    `json:"tools"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	History       bool   `json:"history"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       s.opts.Version,
		Tools:         s.exec.Registry().Len(),
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
		History:       s.history != nil,
	})
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Server        ServerStats          `json:"server"`
	UptimeSeconds int64                `json:"uptime_seconds"`
	Executions    tools.ExecutionStats `json:"executions"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		Server:        s.stats.GetStats(),
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
		Executions:    s.exec.Stats(),
	})
}

// handleHistory handles GET /api/history?tool=&status=&limit=.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, errNotFound, "history is disabled", "")
		return
	}
	q := r.URL.Query()
	filter := history.Filter{Tool: q.Get("tool"), Status: q.Get("status")}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errBadRequest, "limit must be a non-negative integer", "limit")
			return
		}
		filter.Limit = n
	}
	if t := s.exec.Registry().Get(filter.Tool); t != nil {
		filter.Tool = t.Name
	}

	entries, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("listing history")
		writeError(w, http.StatusInternalServerError, errInternal, "could not read history", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "count": len(entries)})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// httpServer returns the underlying server, creating it on first use so
// a Shutdown that races ahead of Serve still stops it.
func (s *Server) httpServer() *http.Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		s.server = &http.Server{
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       5 * time.Minute,
			WriteTimeout:      5 * time.Minute,
			IdleTimeout:       2 * time.Minute,
		}
	}
	return s.server
}

// Serve serves on ln until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := s.httpServer()
	s.logger.Info().Str("addr", ln.Addr().String()).Str("version", s.opts.Version).Msg("server start")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully, waiting
// up to grace for in-flight runs.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown gracefully shuts down the server. Serve calls made after
// Shutdown return immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	stats := s.stats.GetStats()
	s.logger.Info().
		Int64("requests", stats.TotalRequests).
		Int64("tool_runs", stats.ToolRuns).
		Msg("server shutdown")
	return s.httpServer().Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    int    `json:"code"`
}

func writeError(w http.ResponseWriter, status int, kind, message, param string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Message: message, Type: kind, Param: param, Code: status}})
}
