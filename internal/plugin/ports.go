package plugin

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"claimflow/internal/attestation/models"
)

// StateUpdater folds a plugin response into the source entity.
type StateUpdater interface {
	UpdateState(ctx context.Context, resp models.PluginResponseMessage) error
}

// Actor handles requests addressed to one internal plugin.
type Actor interface {
	Handle(ctx context.Context, msg models.PluginRequestMessage) error
}
