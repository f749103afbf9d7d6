package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultPreviewLength caps the quantity options offered for a tiered product.
const DefaultPreviewLength = 20

// defaultQuantities is offered when a product has no tiers.
var defaultQuantities = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

type QuantityTier struct {
	MinQuantity  int             `json:"minQuantity"`
	MaxQuantity  int             `json:"maxQuantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

// Contains reports whether quantity falls inside [MinQuantity, MaxQuantity].
func (t QuantityTier) Contains(quantity int) bool {
	return quantity >= t.MinQuantity && quantity <= t.MaxQuantity
}

// Tiered is anything with a base unit price and an optional ordered tier list.
type Tiered interface {
	BasePrice() decimal.Decimal
	PriceTiers() []QuantityTier
}

// ResolvePrice returns the per-unit price for quantity. The first tier in list
// order whose range contains quantity wins; with no tiers, or no match, the
// base price applies. Callers clamp quantity to >= 1 before calling.
func ResolvePrice(p Tiered, quantity int) decimal.Decimal {
	for _, tier := range p.PriceTiers() {
		if tier.Contains(quantity) {
			return tier.PricePerUnit
		}
	}
	return p.BasePrice()
}

// LineTotal is the resolved unit price multiplied by quantity.
func LineTotal(p Tiered, quantity int) decimal.Decimal {
	return ResolvePrice(p, quantity).Mul(decimal.NewFromInt(int64(quantity)))
}

// QuantityOptions lists the quantities a buyer can pick from. For tiered
// products this is every quantity covered by some tier plus 1, ascending,
// capped at limit (DefaultPreviewLength when limit <= 0). Products without
// tiers get 1..10.
func QuantityOptions(p Tiered, limit int) []int {
	tiers := p.PriceTiers()
	if len(tiers) == 0 {
		out := make([]int, len(defaultQuantities))
		copy(out, defaultQuantities)
		return out
	}
	if limit <= 0 {
		limit = DefaultPreviewLength
	}

	seen := map[int]struct{}{1: {}}
	for _, tier := range tiers {
		// Only the smallest limit values survive the cap, so a tier never
		// needs to contribute more than limit entries.
		lo := max(tier.MinQuantity, 1)
		hi := min(tier.MaxQuantity, lo+limit-1)
		for qty := lo; qty <= hi; qty++ {
			seen[qty] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for qty := range seen {
		out = append(out, qty)
	}
	sort.Ints(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// QuantityOption pairs a selectable quantity with its resolved unit price.
type QuantityOption struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

func PricedOptions(p Tiered, limit int) []QuantityOption {
	qtys := QuantityOptions(p, limit)
	out := make([]QuantityOption, 0, len(qtys))
	for _, qty := range qtys {
		unit := ResolvePrice(p, qty)
		out = append(out, QuantityOption{
			Quantity:  qty,
			UnitPrice: unit,
			Total:     unit.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return out
}
