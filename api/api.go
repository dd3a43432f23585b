package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mezonai/cryptocurrency/errors"
	"github.com/mezonai/cryptocurrency/exception"
	"github.com/mezonai/cryptocurrency/interfaces"
	"github.com/mezonai/cryptocurrency/jsonx"
	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/monitoring"
	"github.com/mezonai/cryptocurrency/types"
)

// APIServer serves the read-only HTTP surface of the ledger.
type APIServer struct {
	walletService interfaces.WalletService
	healthService interfaces.HealthService
	router        *mux.Router
	server        *http.Server
	ListenAddr    string
}

func NewAPIServer(walletService interfaces.WalletService, healthService interfaces.HealthService, addr string) *APIServer {
	s := &APIServer{
		walletService: walletService,
		healthService: healthService,
		router:        mux.NewRouter(),
		ListenAddr:    addr,
	}
	s.setupRoutes()
	return s
}

func (s *APIServer) setupRoutes() {
	s.router.HandleFunc("/wallet", s.getWallet).Methods(http.MethodGet)
	s.router.HandleFunc("/wallets", s.getWallets).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", monitoring.Handler()).Methods(http.MethodGet)
}

// GetRouter returns the configured router
func (s *APIServer) GetRouter() *mux.Router {
	return s.router
}

func (s *APIServer) Start() {
	s.server = &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logx.Info("API", fmt.Sprintf("API listen on %s", s.ListenAddr))
	exception.SafeGo("APIServer", func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("API", "API server stopped:", err)
		}
	})
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *APIServer) getWallet(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("pub_key")
	if raw == "" {
		http.Error(w, "missing pub_key param", http.StatusBadRequest)
		return
	}
	pubKey, err := types.PublicKeyFromString(raw)
	if err != nil {
		http.Error(w, errors.ErrMsgInvalidPubKey, http.StatusBadRequest)
		return
	}

	wallet, err := s.walletService.GetWallet(r.Context(), pubKey)
	if err != nil {
		if errors.IsNotFound(err) {
			http.Error(w, errors.ErrMsgWalletNotFound, http.StatusNotFound)
			return
		}
		logx.Error("API", fmt.Sprintf("Failed to get wallet %s: %v", pubKey, err))
		http.Error(w, errors.ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, wallet)
}

func (s *APIServer) getWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.walletService.ListWallets(r.Context())
	if err != nil {
		logx.Error("API", "Failed to list wallets:", err)
		http.Error(w, errors.ErrMsgInternal, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, wallets)
}

func (s *APIServer) getHealth(w http.ResponseWriter, r *http.Request) {
	status, err := s.healthService.Check(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if status.Status != "ok" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = jsonx.NewEncoder(w).Encode(status)
		return
	}
	s.writeJSON(w, status)
}

func (s *APIServer) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsonx.NewEncoder(w).Encode(data); err != nil {
		logx.Error("API", "Failed to encode response:", err)
	}
}
