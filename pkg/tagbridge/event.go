package tagbridge

import (
	"context"
	"fmt"
)

// GA4 item keys and the property names they map onto.
var itemFieldMap = []struct {
	from, to string
	str      bool
}{
	{"item_id", "product_id", true},
	{"item_name", "product_name", true},
	{"item_brand", "brand", true},
	{"item_category", "category", true},
	{"item_variant", "variant", true},
	{"price", "price", false},
	{"quantity", "quantity", false},
}

func isRecognizedItemKey(key string) bool {
	for _, f := range itemFieldMap {
		if f.from == key {
			return true
		}
	}
	return false
}

func (b *Bridge) logEvent(_ context.Context, params Bag) error {
	name, ok := params.String(KeyEventName)
	if !ok {
		return fmt.Errorf("%s must be a string: %w", KeyEventName, ErrMissingField)
	}
	props := params.Without(KeyEventName)

	if b.ecommerce.IsEcommerce(name) {
		b.logger.Printf("tagbridge: ecommerce event %q", name)
		b.logEcommerce(name, props)
		b.sink.RequestImmediateFlush()
		return nil
	}

	b.sink.LogCustomEvent(name, props)
	b.sink.RequestImmediateFlush()
	b.logger.Printf("tagbridge: custom event logged: %s", name)
	return nil
}

// logEcommerce emits one call per item in input order, or a single call with
// the raw parameters when there are no items.
func (b *Bridge) logEcommerce(name string, params Bag) {
	target := b.ecommerce.Resolve(name)

	items, ok := params.Items(KeyItems)
	if !ok || len(items) == 0 {
		b.sink.LogCustomEvent(target, params)
		b.sink.RequestImmediateFlush()
		b.logger.Printf("tagbridge: ecommerce event logged without items: %s", target)
		return
	}

	for i, item := range items {
		props := make(map[string]any)
		for _, f := range itemFieldMap {
			v, present := item[f.from]
			if !present || v == nil {
				continue
			}
			if _, isString := v.(string); f.str && !isString {
				continue
			}
			props[f.to] = v
		}

		if currency, ok := params.String(KeyCurrency); ok {
			props[KeyCurrency] = currency
		}
		copyPresent(props, params, KeyValue)

		switch name {
		case "purchase", "order_placed":
			copyString(props, params, KeyTransactionID)
			copyString(props, params, KeyAffiliation)
			copyPresent(props, params, KeyTax)
			copyPresent(props, params, KeyShipping)
			copyString(props, params, KeyCoupon)
		case "refund":
			copyString(props, params, KeyTransactionID)
		}

		metadata := make(map[string]any)
		for k, v := range item {
			if !isRecognizedItemKey(k) {
				metadata[k] = v
			}
		}
		if len(metadata) > 0 {
			props["metadata"] = metadata
		}

		b.sink.LogCustomEvent(target, props)
		b.sink.RequestImmediateFlush()
		b.logger.Printf("tagbridge: ecommerce item %d/%d logged: %s", i+1, len(items), target)
	}
}

func copyPresent(dst map[string]any, src Bag, key string) {
	if src.Has(key) {
		dst[key] = src[key]
	}
}

func copyString(dst map[string]any, src Bag, key string) {
	if s, ok := src.String(key); ok {
		dst[key] = s
	}
}
