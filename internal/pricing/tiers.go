package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrTierRange   = errors.New("tier range is invalid")
	ErrTierPrice   = errors.New("tier price must be positive")
	ErrTierOverlap = errors.New("tier ranges overlap")
)

// ValidateTiers checks the tier list an editor is about to save. It reports
// the first problem found; ResolvePrice does not depend on it and keeps
// first-match-wins for whatever list it is given.
func ValidateTiers(tiers []QuantityTier) error {
	for i, tier := range tiers {
		if tier.MinQuantity < 1 || tier.MaxQuantity < tier.MinQuantity {
			return fmt.Errorf("tier %d [%d-%d]: %w", i, tier.MinQuantity, tier.MaxQuantity, ErrTierRange)
		}
		if !tier.PricePerUnit.IsPositive() {
			return fmt.Errorf("tier %d: %w", i, ErrTierPrice)
		}
		for j := 0; j < i; j++ {
			prev := tiers[j]
			if tier.MinQuantity <= prev.MaxQuantity && prev.MinQuantity <= tier.MaxQuantity {
				return fmt.Errorf("tier %d overlaps tier %d: %w", i, j, ErrTierOverlap)
			}
		}
	}
	return nil
}

// PriceBreak is one row of the bulk pricing table shown next to the
// quantity picker.
type PriceBreak struct {
	Label        string          `json:"label"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

func PriceBreaks(p Tiered) []PriceBreak {
	tiers := p.PriceTiers()
	out := make([]PriceBreak, 0, len(tiers))
	for _, tier := range tiers {
		label := fmt.Sprintf("%d-%d units", tier.MinQuantity, tier.MaxQuantity)
		if tier.MinQuantity == tier.MaxQuantity {
			label = fmt.Sprintf("%d unit", tier.MinQuantity)
		}
		out = append(out, PriceBreak{Label: label, PricePerUnit: tier.PricePerUnit})
	}
	return out
}
