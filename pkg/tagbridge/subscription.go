package tagbridge

import (
	"context"
	"fmt"
	"strings"
)

// ParseSubscriptionState is case-insensitive. Unmatched input yields
// Unsubscribed together with an ErrUnrecognizedValue.
//
// "opted_out" and "optedout" resolve to Subscribed. That looks inverted but
// it is what existing tag containers are tuned against, so it is kept.
func ParseSubscriptionState(s string) (SubscriptionState, error) {
	switch strings.ToLower(s) {
	case "opted_in", "optedin":
		return SubscriptionOptedIn, nil
	case "subscribed", "opted_out", "optedout":
		return SubscriptionSubscribed, nil
	case "unsubscribed":
		return SubscriptionUnsubscribed, nil
	default:
		return SubscriptionUnsubscribed, fmt.Errorf("subscription state %q, defaulting to %s: %w",
			s, SubscriptionUnsubscribed, ErrUnrecognizedValue)
	}
}

func (b *Bridge) subscriptionState(params Bag) (SubscriptionState, error) {
	raw, ok := params.String(KeySubscriptionState)
	if !ok {
		return "", fmt.Errorf("%s: %w", KeySubscriptionState, ErrMissingField)
	}
	state, err := ParseSubscriptionState(raw)
	if err != nil {
		b.warn(err)
	}
	return state, nil
}

func (b *Bridge) setEmailSubscription(_ context.Context, params Bag) error {
	state, err := b.subscriptionState(params)
	if err != nil {
		return err
	}
	b.sink.SetEmailSubscriptionState(state)
	b.sink.RequestImmediateFlush()
	b.logger.Printf("tagbridge: email subscription state set to %s", state)
	return nil
}

// setPushSubscription waits for the device's notification authorization and
// drops the update unless it is authorized or provisional. Nothing is queued
// for a later retry.
func (b *Bridge) setPushSubscription(ctx context.Context, params Bag) error {
	state, err := b.subscriptionState(params)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, b.permissionTimeout)
	defer cancel()
	status, err := b.permission.NotificationAuthorization(ctx)
	if err != nil {
		return fmt.Errorf("query notification authorization: %v: %w", err, ErrPermissionDenied)
	}
	if !status.Granted() {
		return fmt.Errorf("status %s: %w", status, ErrPermissionDenied)
	}

	b.sink.SetPushSubscriptionState(state)
	b.sink.RequestImmediateFlush()
	b.logger.Printf("tagbridge: push subscription state set to %s", state)
	return nil
}

func subscriptionGroupID(params Bag) (string, error) {
	id, ok := params.String(KeySubscriptionGroupID)
	if !ok || id == "" {
		return "", fmt.Errorf("%s: %w", KeySubscriptionGroupID, ErrMissingField)
	}
	return id, nil
}

func (b *Bridge) addToSubscriptionGroup(_ context.Context, params Bag) error {
	id, err := subscriptionGroupID(params)
	if err != nil {
		return err
	}
	b.sink.AddToSubscriptionGroup(id)
	b.sink.RequestImmediateFlush()
	b.logger.Printf("tagbridge: added user to subscription group %s", id)
	return nil
}

// removeFromSubscriptionGroup validates the group id but emits nothing.
// TODO: call Sink.RemoveFromSubscriptionGroup once the tag containers that
// send this action confirm removal is wanted; until then it stays inert.
func (b *Bridge) removeFromSubscriptionGroup(_ context.Context, params Bag) error {
	id, err := subscriptionGroupID(params)
	if err != nil {
		return err
	}
	b.logger.Printf("tagbridge: remove from subscription group %s accepted, not forwarded", id)
	return nil
}
