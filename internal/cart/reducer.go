package cart

import (
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
)

// Command is one of AddItem, RemoveItem, UpdateQuantity, ClearCart or LoadCart.
type Command interface {
	isCommand()
}

type AddItem struct {
	Product  catalog.Product
	Quantity int
	Size     string
	Color    string
}

type RemoveItem struct {
	ID string
}

type UpdateQuantity struct {
	ID       string
	Quantity int
}

type ClearCart struct{}

// LoadCart replaces the items wholesale. Stores do not persist it.
type LoadCart struct {
	Items []LineItem
}

func (AddItem) isCommand()        {}
func (RemoveItem) isCommand()     {}
func (UpdateQuantity) isCommand() {}
func (ClearCart) isCommand()      {}
func (LoadCart) isCommand()       {}

// Apply returns the state that results from cmd. The input state is never
// modified; every path that changes items works on a fresh slice.
func Apply(s State, cmd Command) State {
	switch c := cmd.(type) {
	case AddItem:
		return recompute(addItem(s.Items, c))

	case RemoveItem:
		items := make([]LineItem, 0, len(s.Items))
		for _, item := range s.Items {
			if item.ID != c.ID {
				items = append(items, item)
			}
		}
		return recompute(items)

	case UpdateQuantity:
		items := cloneItems(s.Items)
		for i := range items {
			if items[i].ID == c.ID {
				items[i].Quantity = max(1, c.Quantity)
				break
			}
		}
		return recompute(items)

	case ClearCart:
		return recompute(nil)

	case LoadCart:
		// Restored lines get the same floor as live ones, and a line saved
		// without an id gets the one AddItem would have given it.
		items := make([]LineItem, 0, len(c.Items))
		for _, item := range c.Items {
			if item.ID == "" {
				item.ID = LineID(item.ProductID, item.SelectedSize, item.SelectedColor)
			}
			item.Quantity = max(1, item.Quantity)
			items = append(items, item)
		}
		return recompute(items)
	}
	return s
}

func addItem(current []LineItem, c AddItem) []LineItem {
	qty := max(1, c.Quantity)
	id := LineID(c.Product.ID, c.Size, c.Color)

	items := cloneItems(current)
	for i := range items {
		if items[i].sameVariant(c.Product.ID, c.Size, c.Color) {
			items[i].Quantity += qty
			return items
		}
	}
	return append(items, LineItem{
		ID:            id,
		ProductID:     c.Product.ID,
		Product:       c.Product,
		Quantity:      qty,
		SelectedSize:  c.Size,
		SelectedColor: c.Color,
	})
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items), len(items)+1)
	copy(out, items)
	return out
}

func recompute(items []LineItem) State {
	if items == nil {
		items = []LineItem{}
	}
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.Subtotal())
		count += item.Quantity
	}
	return State{Items: items, Total: total, ItemCount: count}
}
