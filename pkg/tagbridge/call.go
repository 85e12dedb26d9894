package tagbridge

// CallKind identifies one outbound sink operation. Values double as NATS
// subject tokens, so they stay lowercase with underscores.
type CallKind string

const (
	CallLogCustomEvent              CallKind = "log_custom_event"
	CallLogPurchase                 CallKind = "log_purchase"
	CallSetUserAttribute            CallKind = "set_user_attribute"
	CallSetCustomAttribute          CallKind = "set_custom_attribute"
	CallChangeUser                  CallKind = "change_user"
	CallSetEmailSubscription        CallKind = "set_email_subscription"
	CallSetPushSubscription         CallKind = "set_push_subscription"
	CallAddToSubscriptionGroup      CallKind = "add_to_subscription_group"
	CallRemoveFromSubscriptionGroup CallKind = "remove_from_subscription_group"
	CallFlush                       CallKind = "flush"
)

// Call is the flattened form of a single Sink invocation.
type Call struct {
	Kind              CallKind          `json:"kind"`
	Name              string            `json:"name,omitempty"`
	ProductID         string            `json:"product_id,omitempty"`
	Currency          string            `json:"currency,omitempty"`
	Price             float64           `json:"price,omitempty"`
	Quantity          int               `json:"quantity,omitempty"`
	Attribute         UserAttribute     `json:"attribute,omitempty"`
	Key               string            `json:"key,omitempty"`
	Value             any               `json:"value,omitempty"`
	UserID            string            `json:"user_id,omitempty"`
	SubscriptionState SubscriptionState `json:"subscription_state,omitempty"`
	GroupID           string            `json:"group_id,omitempty"`
	Properties        map[string]any    `json:"properties,omitempty"`
}

// CallSink turns every Sink method into a Call handed to the wrapped func.
type CallSink func(Call)

var _ Sink = CallSink(nil)

func (f CallSink) LogCustomEvent(name string, properties map[string]any) {
	f(Call{Kind: CallLogCustomEvent, Name: name, Properties: properties})
}

func (f CallSink) LogPurchase(productID, currency string, price float64, quantity int, properties map[string]any) {
	f(Call{
		Kind:       CallLogPurchase,
		ProductID:  productID,
		Currency:   currency,
		Price:      price,
		Quantity:   quantity,
		Properties: properties,
	})
}

func (f CallSink) SetUserAttribute(attr UserAttribute, value any) {
	f(Call{Kind: CallSetUserAttribute, Attribute: attr, Value: value})
}

func (f CallSink) SetCustomAttribute(key string, value any) {
	f(Call{Kind: CallSetCustomAttribute, Key: key, Value: value})
}

func (f CallSink) ChangeUser(userID string) {
	f(Call{Kind: CallChangeUser, UserID: userID})
}

func (f CallSink) SetEmailSubscriptionState(state SubscriptionState) {
	f(Call{Kind: CallSetEmailSubscription, SubscriptionState: state})
}

func (f CallSink) SetPushSubscriptionState(state SubscriptionState) {
	f(Call{Kind: CallSetPushSubscription, SubscriptionState: state})
}

func (f CallSink) AddToSubscriptionGroup(id string) {
	f(Call{Kind: CallAddToSubscriptionGroup, GroupID: id})
}

func (f CallSink) RemoveFromSubscriptionGroup(id string) {
	f(Call{Kind: CallRemoveFromSubscriptionGroup, GroupID: id})
}

func (f CallSink) RequestImmediateFlush() {
	f(Call{Kind: CallFlush})
}

// MultiSink fans every call out to each sink in order.
type MultiSink []Sink

var _ Sink = MultiSink(nil)

func (m MultiSink) LogCustomEvent(name string, properties map[string]any) {
	for _, s := range m {
		s.LogCustomEvent(name, properties)
	}
}

func (m MultiSink) LogPurchase(productID, currency string, price float64, quantity int, properties map[string]any) {
	for _, s := range m {
		s.LogPurchase(productID, currency, price, quantity, properties)
	}
}

func (m MultiSink) SetUserAttribute(attr UserAttribute, value any) {
	for _, s := range m {
		s.SetUserAttribute(attr, value)
	}
}

func (m MultiSink) SetCustomAttribute(key string, value any) {
	for _, s := range m {
		s.SetCustomAttribute(key, value)
	}
}

func (m MultiSink) ChangeUser(userID string) {
	for _, s := range m {
		s.ChangeUser(userID)
	}
}

func (m MultiSink) SetEmailSubscriptionState(state SubscriptionState) {
	for _, s := range m {
		s.SetEmailSubscriptionState(state)
	}
}

func (m MultiSink) SetPushSubscriptionState(state SubscriptionState) {
	for _, s := range m {
		s.SetPushSubscriptionState(state)
	}
}

func (m MultiSink) AddToSubscriptionGroup(id string) {
	for _, s := range m {
		s.AddToSubscriptionGroup(id)
	}
}

func (m MultiSink) RemoveFromSubscriptionGroup(id string) {
	for _, s := range m {
		s.RemoveFromSubscriptionGroup(id)
	}
}

func (m MultiSink) RequestImmediateFlush() {
	for _, s := range m {
		s.RequestImmediateFlush()
	}
}
