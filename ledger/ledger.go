package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/cryptocurrency/errors"
	"github.com/mezonai/cryptocurrency/events"
	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/monitoring"
	"github.com/mezonai/cryptocurrency/store"
	"github.com/mezonai/cryptocurrency/stringutil"
	"github.com/mezonai/cryptocurrency/types"
)

const DefaultInitBalance uint64 = 100

type Config struct {
	// InitBalance is credited to every wallet at creation.
	InitBalance uint64
}

func DefaultConfig() Config {
	return Config{InitBalance: DefaultInitBalance}
}

// Ledger is the transaction executor. Operations are applied one at a time, each
// inside its own fork of the wallet store.
type Ledger struct {
	mu          sync.Mutex
	walletStore store.WalletStore
	initBalance *uint256.Int
	eventRouter *events.EventRouter
}

// NewLedger creates an executor over walletStore. eventRouter may be nil.
func NewLedger(walletStore store.WalletStore, cfg Config, eventRouter *events.EventRouter) *Ledger {
	return &Ledger{
		walletStore: walletStore,
		initBalance: uint256.NewInt(cfg.InitBalance),
		eventRouter: eventRouter,
	}
}

// Execute applies an unsequenced operation.
func (l *Ledger) Execute(op *types.Operation) error {
	return l.ExecuteAt(0, op)
}

// ExecuteAt applies op, tagging its events with seq. A returned *errors.ExecutionError
// means the operation was rejected and nothing was written; any other error is an
// infrastructure failure.
func (l *Ledger) ExecuteAt(seq uint64, op *types.Operation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	var err error
	switch op.Kind {
	case types.OpCreateWallet:
		if op.CreateWallet == nil {
			return fmt.Errorf("%w: missing create_wallet body", types.ErrMalformedPayload)
		}
		err = l.createWallet(seq, op)
	case types.OpTransfer:
		if op.Transfer == nil {
			return fmt.Errorf("%w: missing transfer body", types.ErrMalformedPayload)
		}
		err = l.transfer(seq, op)
	default:
		return fmt.Errorf("%w: %d", types.ErrUnknownOperation, op.Kind)
	}
	monitoring.RecordOpDuration(time.Since(start))

	if err == nil {
		monitoring.RecordExecutedOp(op.Kind.String())
		return nil
	}
	if execErr, ok := errors.AsExecutionError(err); ok {
		monitoring.RecordRejectedOp(execErr.Code.String())
		logx.Warn("LEDGER", fmt.Sprintf("Rejected %s %s from %s: %s", op.Kind, stringutil.ShortHash(op.Hash()), stringutil.ShortKey(op.Author), execErr.Message))
		l.eventRouter.Publish(events.NewOperationRejected(seq, op, execErr))
		return err
	}
	logx.Error("LEDGER", fmt.Sprintf("Failed to execute %s %s from %s: %v", op.Kind, stringutil.ShortHash(op.Hash()), stringutil.ShortKey(op.Author), err))
	return err
}

func (l *Ledger) createWallet(seq uint64, op *types.Operation) error {
	var created *types.Wallet
	err := l.walletStore.WithFork(func(fork *store.Fork) error {
		existing, err := fork.Get(op.Author)
		if err != nil {
			return fmt.Errorf("could not check existence of wallet: %w", err)
		}
		if existing != nil {
			return errors.NewExecutionError(errors.CodeWalletAlreadyExists)
		}

		created = types.NewWallet(op.Author, op.CreateWallet.Name, l.initBalance)
		return fork.Put(created)
	})
	if err != nil {
		return err
	}

	logx.Info("LEDGER", "Create the wallet:", created.String())
	monitoring.IncreaseWalletCount()
	l.eventRouter.Publish(events.NewWalletCreated(seq, op.Hash(), created))
	return nil
}

func (l *Ledger) transfer(seq uint64, op *types.Operation) error {
	tx := op.Transfer
	if op.Author == tx.To {
		return errors.NewExecutionError(errors.CodeSenderSameAsReceiver)
	}

	amount := uint256.NewInt(tx.Amount)
	var changed []*types.Wallet
	err := l.walletStore.WithFork(func(fork *store.Fork) error {
		sender, err := fork.Get(op.Author)
		if err != nil {
			return fmt.Errorf("could not load sender: %w", err)
		}
		if sender == nil {
			return errors.NewExecutionError(errors.CodeSenderNotFound)
		}
		receiver, err := fork.Get(tx.To)
		if err != nil {
			return fmt.Errorf("could not load receiver: %w", err)
		}
		if receiver == nil {
			return errors.NewExecutionError(errors.CodeReceiverNotFound)
		}
		if !sender.HasAtLeast(amount) {
			return errors.NewExecutionError(errors.CodeInsufficientCurrencyAmount)
		}

		sender.Decrease(amount)
		receiver.Increase(amount)
		if err := fork.Put(sender); err != nil {
			return err
		}
		if err := fork.Put(receiver); err != nil {
			return err
		}
		changed = fork.Changes()
		return nil
	})
	if err != nil {
		return err
	}

	logx.Info("LEDGER", fmt.Sprintf("Transfer between wallets: %s => %s", changed[0], changed[1]))
	l.eventRouter.Publish(events.NewTransferCommitted(seq, op.Hash(), op.Author, tx.Amount, tx.Seed, changed))
	return nil
}
