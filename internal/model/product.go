package model

import "strings"

const (
	MinUnitPrice = 1
	MaxUnitPrice = 1_000_000
)

// Product is persisted in the products table / memory store. NameNorm is the
// trimmed, lowercased form used for the unique-name constraint.
type Product struct {
	ProdID    string `db:"prod_id"   json:"prodId"`
	Name      string `db:"name"      json:"name"`
	NameNorm  string `db:"name_norm" json:"-"`
	UnitPrice int64  `db:"unit_price" json:"unitPrice"`
}

// NormalizeProductName trims and lowercases a product name.
func NormalizeProductName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
