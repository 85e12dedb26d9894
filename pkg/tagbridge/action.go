package tagbridge

// Action is the operation an inbound bag resolves to.
type Action string

const (
	ActionLogEvent                    Action = "logEvent"
	ActionLogPurchase                 Action = "logPurchase"
	ActionCustomAttribute             Action = "customAttribute"
	ActionUserAttribute               Action = "userAttribute"
	ActionChangeUser                  Action = "changeUser"
	ActionSetEmailSubscription        Action = "setEmailSubscription"
	ActionSetPushSubscription         Action = "setPushSubscription"
	ActionAddToSubscriptionGroup      Action = "addToSubscriptionGroup"
	ActionRemoveFromSubscriptionGroup Action = "removeFromSubscriptionGroup"
)

// Bag keys understood by the classifier and handlers.
const (
	KeyActionType  = "actionType"
	KeyGA4Purchase = "ga4_purchase"
	KeyEventName   = "eventName"

	KeyProductID     = "product_id"
	KeyCurrency      = "currency"
	KeyValue         = "value"
	KeyItems         = "items"
	KeyProperties    = "properties"
	KeyTransactionID = "transaction_id"
	KeyAffiliation   = "affiliation"
	KeyTax           = "tax"
	KeyShipping      = "shipping"
	KeyCoupon        = "coupon"

	KeyExternalUserID = "externalUserId"

	KeyCustomAttributeKey   = "customAttributeKey"
	KeyCustomAttributeValue = "customAttributeValue"
	KeyAttributeKey         = "attributeKey"
	KeyAttributeValue       = "attributeValue"

	KeySubscriptionState   = "subscriptionState"
	KeySubscriptionGroupID = "subscriptionGroupId"
)

// Classify resolves the action for params and returns the bag the handler
// should see. An explicit string actionType wins and is consumed, then the
// GA4 purchase marker (consumed), then the presence of eventName. ok is false
// when none apply. params itself is never modified.
func Classify(params Bag) (action Action, rest Bag, ok bool) {
	if explicit, isString := params.String(KeyActionType); isString {
		return Action(explicit), params.Without(KeyActionType), true
	}
	if params.Has(KeyGA4Purchase) {
		return ActionLogPurchase, params.Without(KeyGA4Purchase), true
	}
	if params.Has(KeyEventName) {
		return ActionLogEvent, params.Without(), true
	}
	return "", params, false
}
