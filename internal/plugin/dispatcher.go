package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
	"claimflow/pkg/platform/sentinel"
)

const internalPrefix = "did:internal:"

var (
	// ErrQueueFull is returned when the internal actor queue cannot take
	// another request.
	ErrQueueFull = errors.New("internal plugin queue is full")
	// ErrNoRoute is returned for external plugins when no publisher is set.
	ErrNoRoute = errors.New("no route for plugin")
)

const defaultQueueSize = 256

// Dispatcher routes internal actors to an in-process queue and everything
// else to the external router.
type Dispatcher struct {
	external ports.Router
	queue    chan models.PluginRequestMessage
}

type DispatcherOption func(*Dispatcher)

// WithQueueSize bounds the internal actor queue.
func WithQueueSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queue = make(chan models.PluginRequestMessage, size)
		}
	}
}

// NewDispatcher returns a router. external may be nil when only internal
// actors are in use.
func NewDispatcher(external ports.Router, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		external: external,
		queue:    make(chan models.PluginRequestMessage, defaultQueueSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Inbox is the queue consumed by the internal actor Worker.
func (d *Dispatcher) Inbox() <-chan models.PluginRequestMessage {
	return d.queue
}

func (d *Dispatcher) Route(ctx context.Context, msg models.PluginRequestMessage) error {
	if IsInternal(msg.AttestorPlugin) {
		select {
		case d.queue <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			return fmt.Errorf("%s: %w: %w", msg.AttestorPlugin, ErrQueueFull, sentinel.ErrUnavailable)
		}
	}
	if d.external == nil {
		return fmt.Errorf("%s: %w", msg.AttestorPlugin, ErrNoRoute)
	}
	return d.external.Route(ctx, msg)
}

// IsInternal reports whether plugin names an in-process actor.
func IsInternal(plugin string) bool {
	return strings.HasPrefix(plugin, internalPrefix)
}

// ActorName extracts the actor from an internal plugin DID such as
// "did:internal:ClaimPluginActor?entity=Teacher".
func ActorName(plugin string) string {
	name := strings.TrimPrefix(plugin, internalPrefix)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return name
}
