// Package catalog loads the prize table and shop catalog, either from the
// embedded defaults or from operator-supplied JSON files. Both are
// validated here so a bad table never reaches the engine.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"premi/internal/core"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

type prizeJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	FaceValue string `json:"face_value"`
	Weight    int    `json:"weight"`
}

type shopItemJSON struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Stock           int    `json:"stock"` // -1 = unlimited
	DiscountPercent int    `json:"discount_percent"`
	Active          bool   `json:"active"`
}

// LoadPrizes reads the prize table from path, or the embedded default
// table when path is empty. The table is validated, weights summing to
// exactly 100 included.
func LoadPrizes(path string) ([]core.Prize, error) {
	data, err := readFile(path, "defaults/prizes.json")
	if err != nil {
		return nil, fmt.Errorf("read prize table: %w", err)
	}

	var rows []prizeJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse prize table: %w", err)
	}

	prizes := make([]core.Prize, len(rows))
	for i, r := range rows {
		prizes[i] = core.Prize{
			ID:        r.ID,
			Name:      r.Name,
			Category:  core.PrizeCategory(r.Category),
			FaceValue: r.FaceValue,
			Weight:    r.Weight,
		}
	}

	if err := core.ValidatePrizes(prizes); err != nil {
		return nil, fmt.Errorf("prize table: %w", err)
	}
	return prizes, nil
}

// LoadShopItems reads the shop catalog from path, or the embedded default
// catalog when path is empty.
func LoadShopItems(path string) ([]core.ShopItem, error) {
	data, err := readFile(path, "defaults/shop.json")
	if err != nil {
		return nil, fmt.Errorf("read shop catalog: %w", err)
	}

	var rows []shopItemJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse shop catalog: %w", err)
	}

	items := make([]core.ShopItem, len(rows))
	for i, r := range rows {
		items[i] = core.ShopItem{
			ID:              r.ID,
			Name:            r.Name,
			Price:           r.Price,
			Stock:           r.Stock,
			DiscountPercent: r.DiscountPercent,
			Active:          r.Active,
		}
	}

	if err := core.ValidateShopItems(items); err != nil {
		return nil, fmt.Errorf("shop catalog: %w", err)
	}
	return items, nil
}

func readFile(path, embedded string) ([]byte, error) {
	if path == "" {
		return defaultsFS.ReadFile(embedded)
	}
	return os.ReadFile(path)
}
