package client

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/mezonai/cryptocurrency/errors"
	"github.com/mezonai/cryptocurrency/jsonrpc"
	"github.com/mezonai/cryptocurrency/jsonx"
	"github.com/mezonai/cryptocurrency/types"
)

type Config struct {
	Endpoint string
}

// SignedOp is an operation in the form the node accepts: base58 author, hex payload
// and base58 signature.
type SignedOp struct {
	Author    string `json:"author"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type LedgerRPCClient struct {
	cfg Config
	rpc *jrpc2.Client
}

var _ LedgerClient = (*LedgerRPCClient)(nil)

func NewClient(cfg Config) (*LedgerRPCClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("client: empty endpoint")
	}
	ch := jhttp.NewChannel(cfg.Endpoint, nil)
	return &LedgerRPCClient{
		cfg: cfg,
		rpc: jrpc2.NewClient(ch, nil),
	}, nil
}

func (c *LedgerRPCClient) CreateWallet(ctx context.Context, name string, key []byte) (*types.Receipt, error) {
	author, err := PublicKeyOf(key)
	if err != nil {
		return nil, err
	}
	signed, err := SignOp(types.NewCreateWalletOp(author, name), key)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, types.OpCreateWallet, signed)
}

func (c *LedgerRPCClient) Transfer(ctx context.Context, to types.PublicKey, amount, seed uint64, key []byte) (*types.Receipt, error) {
	author, err := PublicKeyOf(key)
	if err != nil {
		return nil, err
	}
	signed, err := SignOp(types.NewTransferOp(author, to, amount, seed), key)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, types.OpTransfer, signed)
}

// Submit sends an already signed operation. A rejection comes back as an
// *errors.ExecutionError carrying its code.
func (c *LedgerRPCClient) Submit(ctx context.Context, kind types.OperationKind, op SignedOp) (*types.Receipt, error) {
	method := jsonrpc.MethodWalletCreateWallet
	if kind == types.OpTransfer {
		method = jsonrpc.MethodWalletTransfer
	}
	var receipt types.Receipt
	if err := c.rpc.CallResult(ctx, method, op, &receipt); err != nil {
		return nil, convertError(err)
	}
	return &receipt, nil
}

func (c *LedgerRPCClient) GetWallet(ctx context.Context, pubKey types.PublicKey) (*types.Wallet, error) {
	var w types.Wallet
	err := c.rpc.CallResult(ctx, jsonrpc.MethodWalletGetWallet, map[string]string{"pub_key": pubKey.String()}, &w)
	if err != nil {
		return nil, convertError(err)
	}
	return &w, nil
}

func (c *LedgerRPCClient) GetWallets(ctx context.Context) ([]*types.Wallet, error) {
	var res struct {
		Wallets []*types.Wallet `json:"wallets"`
	}
	if err := c.rpc.CallResult(ctx, jsonrpc.MethodWalletGetWallets, nil, &res); err != nil {
		return nil, convertError(err)
	}
	if res.Wallets == nil {
		res.Wallets = []*types.Wallet{}
	}
	return res.Wallets, nil
}

func (c *LedgerRPCClient) StateHash(ctx context.Context) (string, error) {
	var res struct {
		StateHash string `json:"state_hash"`
	}
	if err := c.rpc.CallResult(ctx, jsonrpc.MethodWalletStateHash, nil, &res); err != nil {
		return "", convertError(err)
	}
	return res.StateHash, nil
}

func (c *LedgerRPCClient) CheckHealth(ctx context.Context) (*types.HealthStatus, error) {
	var health types.HealthStatus
	if err := c.rpc.CallResult(ctx, jsonrpc.MethodHealthCheck, nil, &health); err != nil {
		return nil, convertError(err)
	}
	return &health, nil
}

func (c *LedgerRPCClient) Close() error {
	return c.rpc.Close()
}

// convertError turns a JSON-RPC error back into the node's error values.
func convertError(err error) error {
	var rpcErr *jrpc2.Error
	if !stderrors.As(err, &rpcErr) {
		return err
	}
	var ne errors.NetworkError
	if len(rpcErr.Data) == 0 || jsonx.Unmarshal(rpcErr.Data, &ne) != nil {
		return err
	}
	switch {
	case ne.ExecutionCode != nil:
		return errors.NewExecutionError(*ne.ExecutionCode)
	case ne.Code == errors.ErrCodeWalletNotFound:
		return errors.ErrWalletNotFound
	default:
		return &ne
	}
}
