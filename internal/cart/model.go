package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
)

// DefaultVariant stands in for an absent size or color in a line id.
const DefaultVariant = "default"

// ErrCorruptSnapshot marks a stored snapshot that cannot be decoded. It is
// treated as if nothing had been saved.
var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

type LineItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Product       catalog.Product `json:"product"`
	Quantity      int             `json:"quantity"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
	SelectedColor string          `json:"selectedColor,omitempty"`
}

// Subtotal uses the price captured on the line, not a live tier lookup.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type State struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// Empty reports whether the cart has no lines.
func (s State) Empty() bool { return len(s.Items) == 0 }

var variantEscaper = strings.NewReplacer("~", "~7E", "-", "~2D")

// LineID renders a line's (product, size, color) key as a string. Distinct
// keys always get distinct ids: variants are escaped so they never contain
// the separator, and a literal "default" is kept apart from an absent one.
func LineID(productID, size, color string) string {
	return productID + "-" + variantID(size) + "-" + variantID(color)
}

func variantID(v string) string {
	switch v {
	case "":
		return DefaultVariant
	case DefaultVariant:
		return "~" + DefaultVariant
	}
	return variantEscaper.Replace(v)
}

// sameVariant reports whether l is the line for product, size and color.
func (l LineItem) sameVariant(productID, size, color string) bool {
	return l.ProductID == productID && l.SelectedSize == size && l.SelectedColor == color
}

// Snapshot is the persisted form of a cart.
type Snapshot struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func (s State) Snapshot() Snapshot {
	return Snapshot{Items: s.Items, Total: s.Total, ItemCount: s.ItemCount}
}

// Persister saves and loads one cart snapshot. Load returns a nil snapshot
// and no error when nothing has been saved yet.
type Persister interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}
