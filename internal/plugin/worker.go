package plugin

import (
	"context"
	"log/slog"

	"claimflow/internal/attestation/models"
)

// Worker drains the internal queue and hands each request to its actor.
// Actor failures are logged; the worker keeps running.
type Worker struct {
	inbox  <-chan models.PluginRequestMessage
	actors map[string]Actor
	logger *slog.Logger
}

type WorkerOption func(*Worker)

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithActor registers actor under name, e.g. "ClaimPluginActor".
func WithActor(name string, actor Actor) WorkerOption {
	return func(w *Worker) {
		w.actors[name] = actor
	}
}

func NewWorker(inbox <-chan models.PluginRequestMessage, opts ...WorkerOption) *Worker {
	w := &Worker{
		inbox:  inbox,
		actors: make(map[string]Actor),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.dispatch(ctx, msg)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, msg models.PluginRequestMessage) {
	name := ActorName(msg.AttestorPlugin)
	actor, ok := w.actors[name]
	if !ok {
		w.logger.WarnContext(ctx, "no actor for internal plugin, dropping request",
			"attestor_plugin", msg.AttestorPlugin,
			"policy", msg.PolicyName,
		)
		return
	}
	if err := actor.Handle(ctx, msg); err != nil {
		w.logger.ErrorContext(ctx, "internal actor failed",
			"actor", name,
			"policy", msg.PolicyName,
			"entity_type", msg.SourceEntity,
			"entity_id", msg.SourceUUID,
			"status", msg.Status,
			"error", err,
		)
	}
}
