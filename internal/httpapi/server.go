package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fmbridge/internal/bridge"
	"fmbridge/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
// *bridge.Bridge implements it.
type Service interface {
	CheckAvailability() bool
	Status() types.StatusResponse
	RespondContext(ctx context.Context, prompt []byte, ud bridge.UserData, cb bridge.Callbacks)
	StartStream(prompt []byte, ud bridge.UserData, cb bridge.Callbacks) *bridge.Operation
	StopStream()
}

var _ Service = (*bridge.Bridge)(nil)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/v1/respond", func(w http.ResponseWriter, r *http.Request) {
		prompt, ok := decodePrompt(w, r, svc)
		if !ok {
			return
		}
		lvl := requestLogLevel(r)
		start := time.Now()
		logStart(r, lvl, "blocking")

		ctx, cancel := requestContext(r)
		defer cancel()
		w.Header().Set("Content-Type", "application/x-ndjson")
		lw := newLineWriter(w, lvl >= LevelDebug)
		svc.RespondContext(ctx, prompt, nil, lineCallbacks(lw))
		end := lw.close("disconnect")
		countEnd("blocking", end)
		logEnd(r, lvl, "blocking", end, start)
	})

	r.Post("/v1/stream", func(w http.ResponseWriter, r *http.Request) {
		prompt, ok := decodePrompt(w, r, svc)
		if !ok {
			return
		}
		lvl := requestLogLevel(r)
		start := time.Now()
		logStart(r, lvl, "streaming")

		ctx, cancel := requestContext(r)
		defer cancel()
		w.Header().Set("Content-Type", "application/x-ndjson")
		lw := newLineWriter(w, lvl >= LevelDebug)
		op := svc.StartStream(prompt, nil, lineCallbacks(lw))
		select {
		case <-op.Done():
			if op.Outcome() == bridge.OutcomeCancelled {
				lw.write(types.StreamLine{Cancelled: true})
			}
		case <-ctx.Done():
			// Client went away or server is shutting down: stop this stream
			// only, never one that superseded it.
			op.Cancel()
		}
		end := lw.close("disconnect")
		countEnd("streaming", end)
		logEnd(r, lvl, "streaming", end, start)
	})

	r.Post("/v1/stream/stop", func(w http.ResponseWriter, r *http.Request) {
		svc.StopStream()
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.CheckAvailability() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// decodePrompt validates the request envelope. Prompt content itself is
// validated by the bridge and reported in-band.
func decodePrompt(w http.ResponseWriter, r *http.Request, svc Service) ([]byte, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return nil, false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if req.Prompt == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return nil, false
	}
	if !svc.CheckAvailability() {
		writeJSONError(w, http.StatusServiceUnavailable, "model not available")
		return nil, false
	}
	return []byte(req.Prompt), true
}

func lineCallbacks(lw *lineWriter) bridge.Callbacks {
	return bridge.Callbacks{
		OnChunk: func(c string, _ bridge.UserData) { lw.write(types.StreamLine{Chunk: c}) },
		OnDone:  func(bridge.UserData) { lw.write(types.StreamLine{Done: true}) },
		OnError: func(msg string, _ bridge.UserData) { lw.write(types.StreamLine{Error: msg}) },
	}
}
