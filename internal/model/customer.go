package model

import "strings"

// Customer is persisted in the customers table / memory store.
type Customer struct {
	CustID string `db:"cust_id" json:"custId"`
	Name   string `db:"name"    json:"name"`
	Email  string `db:"email"   json:"email"`
}

// NormalizeEmail lowercases an email address for the case-insensitive
// uniqueness check.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
