package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/apibase/internal/endpoint"
	"github.com/eugenenazirov/apibase/internal/metrics"
	"github.com/eugenenazirov/apibase/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the resolver, env sources and store into HTTP handlers.
type Handler struct {
	store   storage.Store
	profile endpoint.Profile
	loadEnv endpoint.Loader
	metrics *metrics.Metrics

	// mode replaces the profile's mode variable when non-empty.
	mode  string
	clock func() time.Time

	refreshMu sync.Mutex
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMode forces the execution mode instead of reading the profile's mode variable.
func WithMode(mode string) HandlerOption {
	return func(h *Handler) {
		h.mode = mode
	}
}

// WithMetrics records resolution outcomes.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Store, profile endpoint.Profile, loadEnv endpoint.Loader, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:   store,
		profile: profile,
		loadEnv: loadEnv,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Refresh reloads the env sources, resolves the configured profile and
// stores the result together with the time it was stored. On failure the
// stored endpoint is left untouched.
func (h *Handler) Refresh() (endpoint.ResolvedEndpoint, time.Time, error) {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	env, err := h.loadEnv()
	if err != nil {
		h.metrics.IncFailure(h.profile.Name, "env_error")
		return endpoint.ResolvedEndpoint{}, time.Time{}, fmt.Errorf("load environment: %w", err)
	}

	mode := h.mode
	if mode == "" {
		mode = h.profile.Mode(env)
	}

	resolved, err := h.profile.Resolve(mode, env)
	if err != nil {
		h.metrics.IncFailure(h.profile.Name, failureReason(err))
		return endpoint.ResolvedEndpoint{}, time.Time{}, err
	}

	if err := h.store.Set(resolved); err != nil {
		return endpoint.ResolvedEndpoint{}, time.Time{}, fmt.Errorf("store endpoint: %w", err)
	}
	// Read back under refreshMu so the timestamp belongs to this resolution.
	_, resolvedAt, err := h.store.Current()
	if err != nil {
		return endpoint.ResolvedEndpoint{}, time.Time{}, fmt.Errorf("read stored endpoint: %w", err)
	}
	h.metrics.IncResolution(resolved.Profile, resolved.Source)
	return resolved, resolvedAt, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetEndpoint(w http.ResponseWriter, _ *http.Request) {
	resolved, resolvedAt, err := h.store.Current()
	if err != nil {
		if errors.Is(err, storage.ErrNotResolved) {
			writeError(w, http.StatusServiceUnavailable, "Endpoint unavailable", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, endpointResponse{
		ResolvedEndpoint: resolved,
		ResolvedAt:       resolvedAt,
	})
}

func (h *Handler) handleReload(w http.ResponseWriter, _ *http.Request) {
	resolved, resolvedAt, err := h.Refresh()
	if err != nil {
		h.metrics.IncReload("error")
		writeResolveError(w, err)
		return
	}
	h.metrics.IncReload("ok")

	writeJSON(w, http.StatusOK, endpointResponse{
		ResolvedEndpoint: resolved,
		ResolvedAt:       resolvedAt,
		Message:          "Endpoint reloaded successfully",
	})
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	all := endpoint.Profiles()
	resp := profilesResponse{
		Active:   h.profile.Name,
		Profiles: make([]profileResponse, 0, len(all)),
	}
	for _, p := range all {
		resp.Profiles = append(resp.Profiles, profileResponse{
			Name:               p.Name,
			Description:        p.Description,
			ModeKey:            p.ModeKey,
			URLKeys:            p.URLKeys,
			ProductionFallback: p.ProductionFallback,
			Default:            p.Default,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	profile := h.profile
	if req.Profile != "" {
		p, err := endpoint.LookupProfile(req.Profile)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid profile", err.Error())
			return
		}
		profile = p
	}

	env := endpoint.Env(req.Env)
	mode := profile.Mode(env)
	if req.Mode != nil {
		mode = *req.Mode
	}

	resolved, err := profile.Resolve(mode, env)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, endpoint.ErrMissingBaseURL):
		return "missing_url"
	case errors.Is(err, endpoint.ErrInvalidBaseURL):
		return "invalid_url"
	default:
		return "other"
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type resolveRequest struct {
	Profile string            `json:"profile"`
	Mode    *string           `json:"mode"`
	Env     map[string]string `json:"env"`
}

type endpointResponse struct {
	endpoint.ResolvedEndpoint
	ResolvedAt time.Time `json:"resolvedAt"`
	Message    string    `json:"message,omitempty"`
}

type profileResponse struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	ModeKey            string   `json:"modeKey"`
	URLKeys            []string `json:"urlKeys"`
	ProductionFallback string   `json:"productionFallback,omitempty"`
	Default            string   `json:"default"`
}

type profilesResponse struct {
	Active   string            `json:"active"`
	Profiles []profileResponse `json:"profiles"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, endpoint.ErrMissingBaseURL):
		writeError(w, http.StatusUnprocessableEntity, "Cannot resolve endpoint", err.Error(),
			"Set the production URL variable or run outside production mode")
	case errors.Is(err, endpoint.ErrInvalidBaseURL):
		writeError(w, http.StatusUnprocessableEntity, "Cannot resolve endpoint", err.Error(),
			"Use an absolute URL such as https://api.example.com")
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
