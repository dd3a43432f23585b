package interfaces

import (
	"context"

	"github.com/mezonai/cryptocurrency/types"
)

type HealthService interface {
	Check(ctx context.Context) (*types.HealthStatus, error)
}
