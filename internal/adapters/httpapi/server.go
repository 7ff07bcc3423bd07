// Package httpapi exposes the client and ledger services as a JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/example/fitout/internal/core/ledger"
	"github.com/example/fitout/internal/core/pipeline"
	"github.com/example/fitout/internal/ports/primary"
	"github.com/example/fitout/internal/ports/secondary"
)

// Metrics is what the server needs from the metrics adapter.
type Metrics interface {
	ObserveRequest(method, route, status string, seconds float64)
	Handler() http.Handler
}

// Server routes HTTP requests to the services.
type Server struct {
	clients primary.ClientService
	ledgers primary.LedgerService
	logger  *zap.Logger
	metrics Metrics
}

// NewServer creates a server. metrics may be nil, in which case /metrics is
// not mounted.
func NewServer(clients primary.ClientService, ledgers primary.LedgerService, logger *zap.Logger, metrics Metrics) *Server {
	return &Server{
		clients: clients,
		ledgers: ledgers,
		logger:  logger.Named("http"),
		metrics: metrics,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/stages", s.listStages)
	r.Get("/board", s.board)
	r.Get("/catalog", s.catalog)

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", s.listClients)
		r.Post("/", s.createClient)

		r.Route("/{clientID}", func(r chi.Router) {
			r.Get("/", s.getClient)
			r.Patch("/", s.updateClient)
			r.Post("/move", s.moveClient)
			r.Get("/can-move", s.canMove)
			r.Post("/substages/{subID}/toggle", s.toggleSubStage)
			r.Put("/substages/{subID}", s.setSubStage)
			r.Post("/approve", s.approveClient)

			r.Route("/ledger", func(r chi.Router) {
				r.Get("/", s.getLedger)
				r.Put("/budget", s.setBudget)
				r.Get("/transactions", s.listTransactions)
				r.Post("/payments", s.recordPayment)
				r.Post("/materials", s.recordMaterials)
				r.Post("/labor", s.recordLabor)
				r.Get("/crews", s.listCrews)
				r.Post("/crews", s.createCrew)
				r.Post("/crews/{crewID}/apply", s.applyCrew)
			})
		})
	})

	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, strconv.Itoa(ww.Status()), elapsed.Seconds())
		}
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

var validationErrors = []error{
	ledger.ErrInvalidAmount,
	ledger.ErrInvalidQuantity,
	ledger.ErrInvalidRate,
	ledger.ErrInvalidHours,
	ledger.ErrInvalidBudget,
	ledger.ErrInvalidPaymentMode,
	ledger.ErrInvalidRole,
	ledger.ErrMissingName,
	ledger.ErrEmptyBatch,
	ledger.ErrNotInCatalog,
	ledger.ErrInvalidDate,
	ledger.ErrInvalidKind,
	pipeline.ErrNameRequired,
	pipeline.ErrUnknownStage,
	pipeline.ErrUnknownSubStage,
}

// writeError maps service errors to status codes:
// gate rejections 409, invalid input 422, unknown entities 404.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *pipeline.GateRejected
	if errors.As(err, &rejected) {
		status := http.StatusConflict
		if rejected.Reason == pipeline.ReasonUnknownStage {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorBody{Error: err.Error(), Reason: string(rejected.Reason), Detail: rejected.Detail})
		return
	}

	var bad badRequest
	switch {
	case errors.As(err, &bad):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	case errors.Is(err, secondary.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	case errors.Is(err, primary.ErrLedgerNotOpen):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Reason: "ledger-not-open"})
		return
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
			return
		}
	}

	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest{fmt.Errorf("invalid request body: %w", err)}
	}
	return nil
}
