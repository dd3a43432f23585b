package interfaces

import (
	"context"

	"github.com/mezonai/cryptocurrency/types"
)

// Executor applies one ordered operation.
type Executor interface {
	ExecuteAt(seq uint64, op *types.Operation) error
}

// OperationSubmitter hands an authenticated operation to the ordering layer and
// waits for its receipt.
type OperationSubmitter interface {
	Submit(ctx context.Context, op *types.Operation) (*types.Receipt, error)
}
