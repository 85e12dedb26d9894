package tagbridge

import (
	"context"
	"strings"
)

// Sink is the engagement platform surface the Bridge emits to. Every call is
// fire-and-forget: implementations own delivery, retry and error reporting.
type Sink interface {
	LogCustomEvent(name string, properties map[string]any)
	LogPurchase(productID, currency string, price float64, quantity int, properties map[string]any)
	SetUserAttribute(attr UserAttribute, value any)
	SetCustomAttribute(key string, value any)
	ChangeUser(userID string)
	SetEmailSubscriptionState(state SubscriptionState)
	SetPushSubscriptionState(state SubscriptionState)
	AddToSubscriptionGroup(id string)
	RemoveFromSubscriptionGroup(id string)
	RequestImmediateFlush()
}

// PermissionChecker reports the device's current notification authorization.
type PermissionChecker interface {
	NotificationAuthorization(ctx context.Context) (AuthorizationStatus, error)
}

// UserAttribute names a typed user-profile field on the engagement platform.
type UserAttribute string

const (
	AttrGender      UserAttribute = "gender"
	AttrFirstName   UserAttribute = "first_name"
	AttrLastName    UserAttribute = "last_name"
	AttrLanguage    UserAttribute = "language"
	AttrEmail       UserAttribute = "email"
	AttrDateOfBirth UserAttribute = "date_of_birth"
	AttrCountry     UserAttribute = "country"
	AttrHomeCity    UserAttribute = "home_city"
	AttrPhoneNumber UserAttribute = "phone_number"
)

type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderUnknown        Gender = "unknown"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

type SubscriptionState string

const (
	SubscriptionOptedIn      SubscriptionState = "opted_in"
	SubscriptionSubscribed   SubscriptionState = "subscribed"
	SubscriptionUnsubscribed SubscriptionState = "unsubscribed"
)

type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationDenied        AuthorizationStatus = "denied"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationProvisional   AuthorizationStatus = "provisional"
	AuthorizationEphemeral     AuthorizationStatus = "ephemeral"
)

// Granted reports whether push updates may be applied under s.
func (s AuthorizationStatus) Granted() bool {
	return s == AuthorizationAuthorized || s == AuthorizationProvisional
}

// ParseAuthorizationStatus is case-insensitive; unknown input is treated as
// not determined.
func ParseAuthorizationStatus(s string) AuthorizationStatus {
	switch st := AuthorizationStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case AuthorizationDenied, AuthorizationAuthorized, AuthorizationProvisional, AuthorizationEphemeral:
		return st
	default:
		return AuthorizationNotDetermined
	}
}

// StaticPermission always answers with the same status.
type StaticPermission AuthorizationStatus

func (p StaticPermission) NotificationAuthorization(context.Context) (AuthorizationStatus, error) {
	return AuthorizationStatus(p), nil
}
