package plugin

import (
	"context"
	"encoding/json"
	"log/slog"

	"claimflow/internal/attestation/models"
	"claimflow/internal/platform/kafka/consumer"
	dErrors "claimflow/pkg/domain-errors"
	"claimflow/pkg/requestcontext"
)

// ResponseHandler applies attestor verdicts read from the response topic.
// Malformed messages and permanent failures are logged and committed;
// conflicts and unavailable dependencies are returned for retry.
type ResponseHandler struct {
	updater StateUpdater
	logger  *slog.Logger
}

type ResponseHandlerOption func(*ResponseHandler)

func WithResponseLogger(logger *slog.Logger) ResponseHandlerOption {
	return func(h *ResponseHandler) {
		h.logger = logger
	}
}

func NewResponseHandler(updater StateUpdater, opts ...ResponseHandlerOption) *ResponseHandler {
	h := &ResponseHandler{
		updater: updater,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ResponseHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var resp models.PluginResponseMessage
	if err := json.Unmarshal(msg.Value, &resp); err != nil {
		h.logger.WarnContext(ctx, "failed to decode plugin response",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}
	if resp.AttestorPlugin == "" {
		resp.AttestorPlugin = string(msg.Key)
	}

	ctx = requestcontext.WithPlugin(ctx, resp.AttestorPlugin)
	if resp.UserID != "" {
		ctx = requestcontext.WithUserID(ctx, resp.UserID)
	}
	if !resp.Date.IsZero() {
		ctx = requestcontext.WithTime(ctx, resp.Date)
	}

	err := h.updater.UpdateState(ctx, resp)
	if err == nil {
		return nil
	}
	if Retryable(err) {
		return err
	}
	h.logger.ErrorContext(ctx, "plugin response rejected",
		"attestor_plugin", resp.AttestorPlugin,
		"policy", resp.PolicyName,
		"entity_type", resp.SourceEntity,
		"entity_id", resp.SourceUUID,
		"status", resp.Status,
		"error", err,
	)
	return nil
}

// Retryable reports whether err may succeed when the same response is
// applied again.
func Retryable(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeConflict, dErrors.CodeServiceUnavailable, dErrors.CodeTimeout:
		return true
	}
	return false
}
