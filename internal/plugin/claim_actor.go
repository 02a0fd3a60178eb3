package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
	"claimflow/pkg/requestcontext"
)

// ClaimEntityType is the registry entity type claims are stored under.
const ClaimEntityType = "Claim"

// ClaimActorName is the internal actor name of ClaimActor.
const ClaimActorName = "ClaimPluginActor"

// Claim statuses.
const (
	ClaimOpen   = "OPEN"
	ClaimClosed = "CLOSED"
)

// Claim fields.
const (
	claimFieldStatus          = "status"
	claimFieldEntity          = "entity"
	claimFieldEntityID        = "entityId"
	claimFieldAttestationID   = "attestationId"
	claimFieldAttestationName = "attestationName"
	claimFieldAttestorEntity  = "attestorEntity"
	claimFieldConditions      = "conditions"
	claimFieldPropertyData    = "propertyData"
	claimFieldRequestor       = "requestorName"
	claimFieldNotes           = "notes"
	claimFieldClosedBy        = "closedBy"
	claimFieldCreatedAt       = "createdAt"
	claimFieldUpdatedAt       = "updatedAt"
)

// ClaimActor keeps claims for attestors that work inside the registry. A
// raised claim is stored as a Claim entity and its id reported back to the
// engine; a claim invalidation closes it.
type ClaimActor struct {
	store   ports.EntityStore
	updater StateUpdater
	logger  *slog.Logger
}

type ClaimActorOption func(*ClaimActor)

func WithClaimActorLogger(logger *slog.Logger) ClaimActorOption {
	return func(a *ClaimActor) {
		a.logger = logger
	}
}

func NewClaimActor(store ports.EntityStore, updater StateUpdater, opts ...ClaimActorOption) *ClaimActor {
	a := &ClaimActor{
		store:   store,
		updater: updater,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ClaimActor) Handle(ctx context.Context, msg models.PluginRequestMessage) error {
	switch msg.Status {
	case models.ActionRaiseClaim:
		return a.raise(ctx, msg)
	case models.ActionSetToDraft:
		return a.close(ctx, msg)
	default:
		return fmt.Errorf("claim actor does not handle %q", msg.Status)
	}
}

func (a *ClaimActor) raise(ctx context.Context, msg models.PluginRequestMessage) error {
	now := timestamp(ctx, msg.Date)
	claim := models.Document{
		claimFieldStatus:          ClaimOpen,
		claimFieldEntity:          msg.SourceEntity,
		claimFieldEntityID:        msg.SourceUUID,
		claimFieldAttestationID:   msg.AttestationUUID,
		claimFieldAttestationName: msg.PolicyName,
		claimFieldAttestorEntity:  msg.AttestorEntity,
		claimFieldConditions:      msg.Condition,
		claimFieldPropertyData:    msg.PropertyData,
		claimFieldRequestor:       msg.UserID,
		claimFieldCreatedAt:       now,
		claimFieldUpdatedAt:       now,
	}
	claimID, err := a.store.Create(ctx, ClaimEntityType, claim)
	if err != nil {
		return fmt.Errorf("store claim: %w", err)
	}
	a.logger.InfoContext(ctx, "claim raised",
		"claim_id", claimID,
		"policy", msg.PolicyName,
		"entity_type", msg.SourceEntity,
		"entity_id", msg.SourceUUID,
	)

	return a.updater.UpdateState(ctx, models.PluginResponseMessage{
		PolicyName:      msg.PolicyName,
		SourceEntity:    msg.SourceEntity,
		SourceUUID:      msg.SourceUUID,
		AttestationUUID: msg.AttestationUUID,
		AttestorPlugin:  msg.AttestorPlugin,
		Status:          models.ActionRaiseClaim,
		AdditionalData:  models.Document{models.FieldClaimIDMeta: claimID},
		PropertiesUUIDs: msg.PropertiesUUID,
		UserID:          msg.UserID,
		EmailID:         msg.EmailID,
		Date:            requestcontext.Now(ctx),
	})
}

func (a *ClaimActor) close(ctx context.Context, msg models.PluginRequestMessage) error {
	claimID, _ := msg.AdditionalInputs[models.FieldClaimIDMeta].(string)
	if claimID == "" {
		return fmt.Errorf("claim invalidation without claim id")
	}
	root, err := a.store.Read(ctx, ClaimEntityType, claimID)
	if err != nil {
		return fmt.Errorf("read claim %s: %w", claimID, err)
	}
	claim, ok := jsondoc.Body(root, ClaimEntityType)
	if !ok {
		return fmt.Errorf("claim %s has no body", claimID)
	}
	if claim[claimFieldStatus] == ClaimClosed {
		return nil
	}

	claim[claimFieldStatus] = ClaimClosed
	claim[claimFieldUpdatedAt] = timestamp(ctx, msg.Date)
	if notes, ok := msg.AdditionalInputs[claimFieldNotes].(string); ok {
		claim[claimFieldNotes] = notes
	}
	if info, ok := msg.AdditionalInputs["attestorInfo"].(map[string]any); ok {
		claim[claimFieldClosedBy] = info
	}
	if err := a.store.Update(ctx, ClaimEntityType, claimID, jsondoc.Wrap(ClaimEntityType, claim)); err != nil {
		return fmt.Errorf("close claim %s: %w", claimID, err)
	}
	a.logger.InfoContext(ctx, "claim closed", "claim_id", claimID, "user_id", msg.UserID)
	return nil
}

func timestamp(ctx context.Context, date time.Time) string {
	if date.IsZero() {
		date = requestcontext.Now(ctx)
	}
	return date.UTC().Format(time.RFC3339)
}
