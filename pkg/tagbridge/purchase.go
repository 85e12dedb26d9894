package tagbridge

import (
	"context"
	"fmt"
)

const (
	unknownTransaction = "UNKNOWN_TRANSACTION"
	unknownSKU         = "unknown_sku"
	unknownProduct     = "Unknown Product"
)

// logPurchase logs one purchase per item, all sharing the resolved
// transaction id, then requests a single flush.
func (b *Bridge) logPurchase(_ context.Context, params Bag) error {
	currency, ok := params.String(KeyCurrency)
	if !ok {
		return fmt.Errorf("%s: %w", KeyCurrency, ErrMissingField)
	}

	transactionID, ok := params.String(KeyTransactionID)
	if !ok {
		if transactionID, ok = params.String(KeyProductID); !ok {
			transactionID = unknownTransaction
		}
	}

	items, ok := params.Items(KeyItems)
	if !ok {
		if props, isMap := params.Map(KeyProperties); isMap {
			items, ok = props.Items(KeyItems)
		}
	}
	if !ok || len(items) == 0 {
		return fmt.Errorf("%s: no purchase items: %w", KeyItems, ErrMissingField)
	}

	for i, item := range items {
		id, ok := item.String("item_id")
		if !ok {
			id = unknownSKU
		}
		name, ok := item.String("item_name")
		if !ok {
			name = unknownProduct
		}
		price := coercePrice(item["price"])
		quantity := coerceQuantity(item["quantity"])

		props := map[string]any{
			KeyProductID:     id,
			"price":          price,
			KeyTransactionID: transactionID,
		}
		copyPresent(props, params, KeyValue)
		if v, ok := item.String("item_category"); ok {
			props["category"] = v
		}
		if v, ok := item.String("item_brand"); ok {
			props["brand"] = v
		}
		if v, ok := item.String("item_variant"); ok {
			props["variant"] = v
		}

		b.sink.LogPurchase(name, currency, price, quantity, props)
		b.logger.Printf("tagbridge: purchase %d/%d logged: product=%q sku=%q price=%v qty=%d",
			i+1, len(items), name, id, price, quantity)
	}
	b.sink.RequestImmediateFlush()
	b.logger.Printf("tagbridge: purchases logged: items=%d transaction=%s", len(items), transactionID)
	return nil
}
