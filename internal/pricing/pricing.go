// Package pricing computes order totals on the server and records priced orders.
//
// Item prices come from the client and are not checked against the catalog;
// only subtotal, shipping and total are derived here, so a client cannot
// submit its own total.
package pricing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/storefront-service/internal/model"
	"github.com/fairyhunter13/storefront-service/internal/obs"
	"github.com/fairyhunter13/storefront-service/internal/store"
)

// places is the number of fractional digits kept on every amount.
const places = 2

// round2 rounds x to two places on its exact binary value, ties to even.
// 1.005 is stored just below 1.005 and so rounds to 1.00.
func round2(x float64) decimal.Decimal {
	return decimal.RequireFromString(strconv.FormatFloat(x, 'f', places, 64))
}

// Price computes subtotal, clamped shipping and total for o. Amounts are
// summed in float64 and rounded to two places; total is rounded from the
// unrounded subtotal plus shipping.
func Price(o model.Order) model.PricedOrder {
	var subtotal float64
	for _, it := range o.Items {
		subtotal += it.Price * float64(it.Quantity)
	}
	var shipping float64
	if o.Shipping != nil {
		shipping = math.Max(0, *o.Shipping)
	}

	return model.PricedOrder{
		Items:    o.Items,
		Subtotal: round2(subtotal).InexactFloat64(),
		Shipping: round2(shipping).InexactFloat64(),
		Total:    round2(subtotal + shipping).InexactFloat64(),
	}
}

// document builds the persisted form of a priced order.
func document(p model.PricedOrder) store.Document {
	items := make([]any, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, map[string]any{
			"product":  it.Product,
			"price":    it.Price,
			"quantity": it.Quantity,
		})
	}
	return store.Document{
		"items":    items,
		"subtotal": p.Subtotal,
		"shipping": p.Shipping,
		"total":    p.Total,
	}
}

// Notifier receives an event for every persisted order. Notify must not block.
type Notifier interface {
	Notify(ev model.OrderPlaced) bool
}

// Engine prices and persists orders.
type Engine struct {
	st       store.Store
	notifier Notifier
	now      func() time.Time
}

// NewEngine returns an Engine writing to st. n may be nil.
func NewEngine(st store.Store, n Notifier) *Engine {
	return &Engine{st: st, notifier: n, now: time.Now}
}

// CreateOrder prices o, inserts exactly one order document and returns the
// identifier assigned by the store with the computed total.
func (e *Engine) CreateOrder(ctx context.Context, o model.Order) (model.Receipt, error) {
	if e.st == nil {
		return model.Receipt{}, store.ErrUnavailable
	}
	priced := Price(o)
	id, err := e.st.Insert(ctx, store.OrderCollection, document(priced))
	if err != nil {
		obs.Metrics.StoreErrors.WithLabelValues("insert").Inc()
		return model.Receipt{}, fmt.Errorf("insert order: %w", err)
	}
	obs.Metrics.OrdersCreated.Inc()
	obs.Metrics.OrderTotal.Observe(priced.Total)
	obs.Logger.Info("order_created",
		"order_id", id,
		"items", len(priced.Items),
		"subtotal", priced.Subtotal,
		"shipping", priced.Shipping,
		"total", priced.Total,
	)

	if e.notifier != nil {
		ev := model.OrderPlaced{
			OrderID:   id,
			Subtotal:  priced.Subtotal,
			Shipping:  priced.Shipping,
			Total:     priced.Total,
			ItemCount: len(priced.Items),
			PlacedAt:  e.now().UTC(),
		}
		if !e.notifier.Notify(ev) {
			obs.Metrics.EventsDropped.Inc()
			obs.Logger.Warn("order_event_dropped", "order_id", id)
		}
	}
	return model.Receipt{ID: id, Total: priced.Total}, nil
}
