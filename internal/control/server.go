//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_control
package control

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/backend"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/desk"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/model"
	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/realtime"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Desk interface {
	Snapshot() desk.Snapshot
	Accept(ctx context.Context) error
	Reject(ctx context.Context) error
	IncrementPrep() (int, error)
	DecrementPrep() (int, error)
	OpenReject() error
	SelectReason(reason string) error
	CancelReject() error
	ToggleMute() bool
	Clear() error
}

type RecentOrders interface {
	List() []cache.RecentOrder
	Get(orderID string) (*cache.RecentOrder, bool)
}

type Channel interface {
	State() realtime.State
}

type Options struct {
	Username     string
	PasswordHash string
	MetricsPath  string
	AuditWorkers int
	AuditBatch   int
	AuditFlush   time.Duration
	AuditSink    AuditSink
}

// Server is the operator control API over the desk.
type Server struct {
	desk         Desk
	recent       RecentOrders
	channel      Channel
	opts         Options
	logger       *zap.Logger
	AuditManager *AuditManager

	mu     sync.Mutex
	server *http.Server
}

func New(d Desk, recent RecentOrders, channel Channel, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "control"))
	if opts.AuditFlush <= 0 {
		opts.AuditFlush = 500 * time.Millisecond
	}
	return &Server{
		desk:         d,
		recent:       recent,
		channel:      channel,
		opts:         opts,
		logger:       logger,
		AuditManager: NewAuditManager(opts.AuditWorkers, opts.AuditBatch, opts.AuditFlush, opts.AuditSink, logger),
	}
}

// Run serves on addr until Shutdown is called.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// accept and reject wait for the backend
		WriteTimeout: 30 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	// audit batches are flushed by Shutdown, after in-flight requests finish
	s.AuditManager.Start(context.WithoutCancel(ctx))

	s.logger.Info("control api listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.AuditManager.Shutdown(ctx)
	s.logger.Info("control api stopped")
	return nil
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet).Name("health")
	if s.opts.MetricsPath != "" {
		router.Handle(s.opts.MetricsPath, promhttp.Handler()).Methods(http.MethodGet).Name("metrics")
	}

	api := router.NewRoute().Subrouter()
	api.Use(s.auditLogMiddleware, s.basicAuthMiddleware)

	api.HandleFunc("/desk", s.handleStatus).Methods(http.MethodGet).Name("status")
	api.HandleFunc("/desk/accept", s.handleAccept).Methods(http.MethodPost).Name("accept")
	api.HandleFunc("/desk/prep/increment", s.handlePrep(1)).Methods(http.MethodPost).Name("prep_increment")
	api.HandleFunc("/desk/prep/decrement", s.handlePrep(-1)).Methods(http.MethodPost).Name("prep_decrement")
	api.HandleFunc("/desk/reject/open", s.handleOpenReject).Methods(http.MethodPost).Name("reject_open")
	api.HandleFunc("/desk/reject", s.handleReject).Methods(http.MethodPost).Name("reject")
	api.HandleFunc("/desk/reject/cancel", s.handleCancelReject).Methods(http.MethodPost).Name("reject_cancel")
	api.HandleFunc("/desk/mute", s.handleMute).Methods(http.MethodPost).Name("mute")
	api.HandleFunc("/desk/clear", s.handleClear).Methods(http.MethodPost).Name("clear")
	api.HandleFunc("/reasons", s.handleReasons).Methods(http.MethodGet).Name("reasons")
	api.HandleFunc("/orders/recent", s.handleRecentOrders).Methods(http.MethodGet).Name("recent_orders")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet).Name("get_order")

	return router
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !s.validOperator(username, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="orderdesk"`)
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validOperator(username, password string) bool {
	if s.opts.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.opts.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.opts.PasswordHash), []byte(password))
	return userOK && passErr == nil
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDeskError maps desk outcomes to status codes. Anything unknown is a
// failed backend command.
func respondDeskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, desk.ErrBusy):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, desk.ErrNotPending):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, desk.ErrReasonRequired):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, desk.ErrClosed):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondError(w, http.StatusBadGateway, backend.UserMessage(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state := realtime.StateDisconnected
	if s.channel != nil {
		state = s.channel.State()
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"channel": state.String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.desk.Snapshot())
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	// the command must finish even if the operator's client goes away
	if err := s.desk.Accept(context.WithoutCancel(r.Context())); err != nil {
		respondDeskError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.desk.Snapshot())
}

func (s *Server) handlePrep(delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		adjust := s.desk.IncrementPrep
		if delta < 0 {
			adjust = s.desk.DecrementPrep
		}
		if _, err := adjust(); err != nil {
			respondDeskError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, s.desk.Snapshot())
	}
}

func (s *Server) handleOpenReject(w http.ResponseWriter, _ *http.Request) {
	if err := s.desk.OpenReject(); err != nil {
		respondDeskError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.desk.Snapshot())
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var rejectRequest struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&rejectRequest); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if rejectRequest.Reason != "" {
		if err := s.desk.SelectReason(rejectRequest.Reason); err != nil {
			respondDeskError(w, err)
			return
		}
	}
	if err := s.desk.Reject(context.WithoutCancel(r.Context())); err != nil {
		respondDeskError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.desk.Snapshot())
}

func (s *Server) handleCancelReject(w http.ResponseWriter, _ *http.Request) {
	if err := s.desk.CancelReject(); err != nil {
		respondDeskError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.desk.Snapshot())
}

func (s *Server) handleMute(w http.ResponseWriter, _ *http.Request) {
	muted := s.desk.ToggleMute()
	respondJSON(w, http.StatusOK, map[string]bool{"muted": muted})
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	if err := s.desk.Clear(); err != nil {
		respondDeskError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.desk.Snapshot())
}

func (s *Server) handleReasons(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, model.RejectReasons)
}

func (s *Server) handleRecentOrders(w http.ResponseWriter, _ *http.Request) {
	if s.recent == nil {
		respondJSON(w, http.StatusOK, []cache.RecentOrder{})
		return
	}
	respondJSON(w, http.StatusOK, s.recent.List())
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.recent == nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}
	order, found := s.recent.Get(id)
	if !found {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, order)
}
