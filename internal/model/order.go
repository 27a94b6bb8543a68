package model

import "time"

const (
	MinQty = 1
	MaxQty = 1000
)

// Order is an order header plus its lines. TotalAmount always equals the sum
// of the line amounts; unit prices are snapshots taken at creation time.
type Order struct {
	OrderID     string      `db:"order_id"     json:"orderId"`
	CustID      string      `db:"cust_id"      json:"custId"`
	OrderDate   time.Time   `db:"order_date"   json:"orderDate"`
	TotalAmount int64       `db:"total_amount" json:"totalAmount"`
	Items       []OrderLine `db:"-"            json:"items"`
}

// OrderLine is one line of an order. LineNo is 1-based and unique within the
// order; ProdID appears at most once per order.
type OrderLine struct {
	OrderID    string `db:"order_id"    json:"-"`
	LineNo     int    `db:"line_no"     json:"lineNo"`
	ProdID     string `db:"prod_id"     json:"prodId"`
	Qty        int    `db:"qty"         json:"qty"`
	UnitPrice  int64  `db:"unit_price"  json:"unitPrice"`
	LineAmount int64  `db:"line_amount" json:"lineAmount"`
}

// OrderSummary is the search result shape (header only, no lines).
type OrderSummary struct {
	OrderID     string    `db:"order_id"     json:"orderId"`
	OrderDate   time.Time `db:"order_date"   json:"orderDate"`
	TotalAmount int64     `db:"total_amount" json:"totalAmount"`
}
