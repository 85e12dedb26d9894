// Package tagbridge translates tag-manager parameter bags into engagement
// platform calls.
//
// A Bridge classifies each bag into an Action, validates and normalizes the
// fields that action needs and emits zero or more calls on its Sink. Failures
// never surface to the caller: every handler either emits or logs and drops.
package tagbridge

import (
	"context"
	"log"
	"time"

	"github.com/primaryrutabaga/braze-bridge/pkg/schemas"
)

const defaultPermissionTimeout = 2 * time.Second

// Recorder observes routing outcomes. Implementations must be safe for
// concurrent use. Action arguments are always known actions or empty.
type Recorder interface {
	Routed(action Action)
	Discarded(action Action, reason string)
	Warned(reason string)
}

type nopRecorder struct{}

func (nopRecorder) Routed(Action)            {}
func (nopRecorder) Discarded(Action, string) {}
func (nopRecorder) Warned(string)            {}

type handlerFunc func(ctx context.Context, params Bag) error

// Bridge is the event-translation adapter. It holds no per-invocation state
// and may be shared between goroutines.
type Bridge struct {
	sink              Sink
	permission        PermissionChecker
	ecommerce         schemas.EcommerceMapping
	logger            *log.Logger
	recorder          Recorder
	permissionTimeout time.Duration
	handlers          map[Action]handlerFunc
}

// Option configures a Bridge.
type Option func(*Bridge)

func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(b *Bridge) { b.recorder = r }
}

// WithMapping replaces the built-in e-commerce mapping table.
func WithMapping(m schemas.MappingFile) Option {
	return func(b *Bridge) { b.ecommerce = m.Ecommerce }
}

// WithPermissionTimeout bounds the notification authorization query.
func WithPermissionTimeout(d time.Duration) Option {
	return func(b *Bridge) { b.permissionTimeout = d }
}

// New builds a Bridge emitting to sink. A nil permission checker reports
// not-determined, which suppresses every push subscription update.
func New(sink Sink, permission PermissionChecker, opts ...Option) *Bridge {
	if permission == nil {
		permission = StaticPermission(AuthorizationNotDetermined)
	}
	b := &Bridge{
		sink:              sink,
		permission:        permission,
		ecommerce:         schemas.DefaultMapping().Ecommerce,
		logger:            log.Default(),
		recorder:          nopRecorder{},
		permissionTimeout: defaultPermissionTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.handlers = map[Action]handlerFunc{
		ActionLogEvent:                    b.logEvent,
		ActionLogPurchase:                 b.logPurchase,
		ActionCustomAttribute:             b.setAttribute,
		ActionUserAttribute:               b.setAttribute,
		ActionChangeUser:                  b.changeUser,
		ActionSetEmailSubscription:        b.setEmailSubscription,
		ActionSetPushSubscription:         b.setPushSubscription,
		ActionAddToSubscriptionGroup:      b.addToSubscriptionGroup,
		ActionRemoveFromSubscriptionGroup: b.removeFromSubscriptionGroup,
	}
	return b
}

// Execute runs one inbound bag through classification and dispatch. It
// returns true when the bag was routed to a known handler, regardless of
// whether that handler emitted anything.
func (b *Bridge) Execute(ctx context.Context, params Bag) bool {
	if params == nil {
		b.logger.Printf("tagbridge: discard: parameters are nil")
		b.recorder.Discarded("", Reason(ErrMissingField))
		return false
	}
	b.logger.Printf("tagbridge: parameters: %s", params.Describe())

	action, rest, ok := Classify(params)
	if !ok {
		b.logger.Printf("tagbridge: discard: cannot determine action type from keys %s", rest.Describe())
		b.recorder.Discarded("", "unclassified")
		return false
	}

	handle, known := b.handlers[action]
	if !known {
		// action is caller-supplied; record it unlabelled to keep the set bounded.
		b.logger.Printf("tagbridge: discard: unknown action type %q", action)
		b.recorder.Discarded("", Reason(ErrUnknownAction))
		return false
	}

	b.recorder.Routed(action)
	if err := handle(ctx, rest); err != nil {
		b.logger.Printf("tagbridge: discard: %s: %v", action, err)
		b.recorder.Discarded(action, Reason(err))
	}
	return true
}

// warn logs a validation failure for a value that is applied anyway.
func (b *Bridge) warn(err error) {
	b.logger.Printf("tagbridge: warn: %v", err)
	b.recorder.Warned(Reason(err))
}
