package jsonrpc

import (
	"context"
	"encoding/hex"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/mezonai/cryptocurrency/common"
	"github.com/mezonai/cryptocurrency/errors"
	"github.com/mezonai/cryptocurrency/exception"
	"github.com/mezonai/cryptocurrency/interfaces"
	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/ratelimit"
	"github.com/mezonai/cryptocurrency/sequencer"
	"github.com/mezonai/cryptocurrency/types"
)

// --- Params/Results ---

// signedOpParams carries an operation the way its author signed it.
type signedOpParams struct {
	Author    string `json:"author"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type getWalletParams struct {
	PubKey string `json:"pub_key"`
}

type getWalletsResponse struct {
	Wallets []*types.Wallet `json:"wallets"`
}

type stateHashResponse struct {
	StateHash string `json:"state_hash"`
}

// --- Server ---

type Server struct {
	addr       string
	submitter  interfaces.OperationSubmitter
	walletSvc  interfaces.WalletService
	healthSvc  interfaces.HealthService
	corsConfig CORSConfig
	limiter    *ratelimit.GlobalRateLimiter
	httpServer *http.Server
}

func NewServer(addr string, submitter interfaces.OperationSubmitter, walletSvc interfaces.WalletService, healthSvc interfaces.HealthService) *Server {
	return &Server{
		addr:      addr,
		submitter: submitter,
		walletSvc: walletSvc,
		healthSvc: healthSvc,
	}
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// SetRateLimiter limits requests per client IP and submissions per author. A nil
// limiter disables both.
func (s *Server) SetRateLimiter(limiter *ratelimit.GlobalRateLimiter) {
	s.limiter = limiter
}

// Handler serves JSON-RPC 2.0 over HTTP POST.
func (s *Server) Handler() http.Handler {
	jh := jhttp.NewBridge(s.buildMethodMap(), &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		ip := extractClientIPFromRequest(r)
		if !s.limiter.AllowIP(ip) {
			logx.Warn("SECURITY", "Rate limit exceeded for IP:", ip)
			http.Error(w, errors.ErrMsgRateLimited, http.StatusTooManyRequests)
			return
		}
		jh.ServeHTTP(w, r)
	})
}

func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	exception.SafeGo("JSONRPCServer", func() {
		logx.Info("JSONRPC", "Listening on", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("JSONRPC", "Server stopped:", err)
		}
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		MethodWalletCreateWallet: handler.New(func(ctx context.Context, p signedOpParams) (*types.Receipt, error) {
			return s.rpcSubmit(ctx, types.OpCreateWallet, p)
		}),
		MethodWalletTransfer: handler.New(func(ctx context.Context, p signedOpParams) (*types.Receipt, error) {
			return s.rpcSubmit(ctx, types.OpTransfer, p)
		}),
		MethodWalletGetWallet: handler.New(func(ctx context.Context, p getWalletParams) (*types.Wallet, error) {
			return s.rpcGetWallet(ctx, p)
		}),
		MethodWalletGetWallets: handler.New(func(ctx context.Context) (*getWalletsResponse, error) {
			wallets, err := s.walletSvc.ListWallets(ctx)
			if err != nil {
				return nil, s.internalError(MethodWalletGetWallets, err)
			}
			return &getWalletsResponse{Wallets: wallets}, nil
		}),
		MethodWalletStateHash: handler.New(func(ctx context.Context) (*stateHashResponse, error) {
			hash, err := s.walletSvc.StateHash(ctx)
			if err != nil {
				return nil, s.internalError(MethodWalletStateHash, err)
			}
			return &stateHashResponse{StateHash: hash}, nil
		}),
		MethodHealthCheck: handler.New(func(ctx context.Context) (*types.HealthStatus, error) {
			status, err := s.healthSvc.Check(ctx)
			if err != nil {
				return nil, s.internalError(MethodHealthCheck, err)
			}
			return status, nil
		}),
	}
}

// --- Implementations ---

func (s *Server) rpcSubmit(ctx context.Context, kind types.OperationKind, p signedOpParams) (*types.Receipt, error) {
	author, err := types.PublicKeyFromString(p.Author)
	if err != nil {
		return nil, invalidParams(errors.ErrCodeInvalidPubKey, errors.ErrMsgInvalidPubKey)
	}
	payload, err := hex.DecodeString(p.Payload)
	if err != nil {
		return nil, invalidParams(errors.ErrCodeInvalidPayload, errors.ErrMsgInvalidPayload)
	}
	signature, err := common.DecodeBase58ToBytes(p.Signature)
	if err != nil {
		return nil, invalidParams(errors.ErrCodeInvalidSignature, errors.ErrMsgInvalidSignature)
	}

	signed := &types.SignedOperation{Kind: kind, Author: author, Payload: payload, Signature: signature}
	op, err := signed.Open()
	if stderrors.Is(err, types.ErrInvalidSignature) {
		return nil, invalidParams(errors.ErrCodeInvalidSignature, errors.ErrMsgInvalidSignature)
	}
	if err != nil {
		logx.Debug("JSONRPC", "Rejected payload:", err)
		return nil, invalidParams(errors.ErrCodeInvalidPayload, errors.ErrMsgInvalidPayload)
	}

	if !s.limiter.AllowWallet(author.String()) {
		logx.Warn("SECURITY", "Rate limit exceeded for wallet:", author)
		return nil, networkError(CodeRateLimited, &errors.NetworkError{Code: errors.ErrCodeRateLimited, Message: errors.ErrMsgRateLimited})
	}

	receipt, err := s.submitter.Submit(ctx, op)
	switch {
	case err == nil:
	case stderrors.Is(err, sequencer.ErrQueueFull):
		return nil, networkError(CodeQueueFull, &errors.NetworkError{Code: errors.ErrCodeQueueFull, Message: errors.ErrMsgQueueFull})
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		// The sequencer never executed the operation; resubmitting is safe.
		return nil, networkError(CodeNotExecuted, &errors.NetworkError{Code: errors.ErrCodeNotExecuted, Message: errors.ErrMsgNotExecuted})
	case stderrors.Is(err, sequencer.ErrSequencerStopped):
		return nil, networkError(CodeUnavailable, &errors.NetworkError{Code: errors.ErrCodeUnavailable, Message: errors.ErrMsgUnavailable})
	default:
		return nil, s.internalError(kind.String(), err)
	}

	if receipt.Status == types.ReceiptRejected {
		execErr := errors.NewExecutionError(errors.ErrorCode(receipt.Code))
		return nil, networkError(CodeExecutionRejectedBase-int(receipt.Code), errors.FromExecution(execErr))
	}
	return receipt, nil
}

func (s *Server) rpcGetWallet(ctx context.Context, p getWalletParams) (*types.Wallet, error) {
	pk, err := types.PublicKeyFromString(p.PubKey)
	if err != nil {
		return nil, invalidParams(errors.ErrCodeInvalidPubKey, errors.ErrMsgInvalidPubKey)
	}
	w, err := s.walletSvc.GetWallet(ctx, pk)
	if errors.IsNotFound(err) {
		return nil, networkError(CodeWalletNotFound, &errors.NetworkError{Code: errors.ErrCodeWalletNotFound, Message: errors.ErrMsgWalletNotFound})
	}
	if err != nil {
		return nil, s.internalError(MethodWalletGetWallet, err)
	}
	return w, nil
}

// --- Helpers ---

func networkError(code int, ne *errors.NetworkError) error {
	return jrpc2.Errorf(jrpc2.Code(code), "%s", ne.Message).WithData(ne)
}

func invalidParams(code errors.NetworkErrorCode, message string) error {
	return networkError(CodeInvalidParams, &errors.NetworkError{Code: code, Message: message})
}

func (s *Server) internalError(method string, err error) error {
	logx.Error("JSONRPC", "Method", method, "failed:", err)
	return networkError(CodeInternal, &errors.NetworkError{Code: errors.ErrCodeInternal, Message: errors.ErrMsgInternal})
}
