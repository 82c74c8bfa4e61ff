package core

import (
	"fmt"
	"strings"
)

// UnlimitedStock marks a shop item whose stock never runs out.
const UnlimitedStock = -1

// ShopItem is one entry of the redemption catalog. Supplied once per
// session and read-only to the engine; remaining stock is tracked in the
// ledger state, not by mutating the catalog.
type ShopItem struct {
	ID              string
	Name            string
	Price           int64 // points, > 0
	Stock           int   // initial stock, >= 0, or UnlimitedStock
	DiscountPercent int   // 0-100
	Active          bool
}

// EffectivePrice is the discounted price in points, rounded down.
func (i ShopItem) EffectivePrice() int64 {
	return i.Price * int64(100-i.DiscountPercent) / 100
}

// Unlimited reports whether the item has no finite stock.
func (i ShopItem) Unlimited() bool {
	return i.Stock == UnlimitedStock
}

// ValidateShopItems checks the shop catalog at load time.
func ValidateShopItems(items []ShopItem) error {
	seen := make(map[string]bool, len(items))
	for _, i := range items {
		if strings.TrimSpace(i.ID) == "" {
			return fmt.Errorf("%w: shop item with empty id", ErrInvariant)
		}
		if seen[i.ID] {
			return fmt.Errorf("%w: duplicate shop item id %s", ErrInvariant, i.ID)
		}
		seen[i.ID] = true
		if i.Price <= 0 {
			return fmt.Errorf("%w: shop item %s has non-positive price %d", ErrInvariant, i.ID, i.Price)
		}
		if i.Stock < UnlimitedStock {
			return fmt.Errorf("%w: shop item %s has invalid stock %d", ErrInvariant, i.ID, i.Stock)
		}
		if i.DiscountPercent < 0 || i.DiscountPercent > 100 {
			return fmt.Errorf("%w: shop item %s has discount %d outside [0,100]", ErrInvariant, i.ID, i.DiscountPercent)
		}
	}
	return nil
}
