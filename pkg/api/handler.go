// CLAUDE:SUMMARY HTTP transport: routes, JSON helpers, request ID and CORS middleware over the shared endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hazyhaar/annomi/pkg/kit"
)

// RequestIDHeader carries the request ID in and out of the HTTP API.
const RequestIDHeader = "X-Request-ID"

// NewRouter returns an http.Handler with all API routes.
func NewRouter(s *Service, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	wrap := func(name string, ep kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.RequestID(), kit.Logging(logger, name))(ep)
	}
	h := &handler{
		health:    wrap("health", healthEndpoint(s)),
		topics:    wrap("topics", topicsEndpoint(s)),
		normalize: wrap("normalize", normalizeEndpoint(s)),
		split:     wrap("split", splitEndpoint(s)),
	}

	mux.HandleFunc("GET /v1/health", h.handleHealth)
	mux.HandleFunc("GET /v1/topics", h.handleTopics)
	mux.HandleFunc("POST /v1/normalize", h.handleNormalize)
	mux.HandleFunc("POST /v1/split", h.handleSplit)

	return cors(requestID(mux))
}

type handler struct {
	health    kit.Endpoint
	topics    kit.Endpoint
	normalize kit.Endpoint
	split     kit.Endpoint
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.health, nil)
}

func (h *handler) handleTopics(w http.ResponseWriter, r *http.Request) {
	req := &topicsReq{}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = n
	}
	h.serve(w, r, h.topics, req)
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeReq
	if !decodeBody(w, r, &req) {
		return
	}
	h.serve(w, r, h.normalize, &req)
}

func (h *handler) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitReq
	if !decodeBody(w, r, &req) {
		return
	}
	h.serve(w, r, h.split, &req)
}

func (h *handler) serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrBadRequest) {
			code = http.StatusBadRequest
		}
		writeError(w, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB max
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// requestID propagates X-Request-ID into the context and echoes it back.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := r.Header.Get(RequestIDHeader); id != "" {
			ctx = kit.WithRequestID(ctx, id)
		}
		ctx = kit.EnsureRequestID(kit.WithTransport(ctx, "http"))
		w.Header().Set(RequestIDHeader, kit.GetRequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
