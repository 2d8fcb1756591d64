package types

import "github.com/shopspring/decimal"

// CartLine is the snapshot of one purchasable line item, captured at
// checkout time and copied verbatim into purchases on materialization.
type CartLine struct {
	ItemID string          `json:"id" validate:"required"`
	Name   string          `json:"name" validate:"required"`
	Price  decimal.Decimal `json:"price" validate:"required"`
	Type   string          `json:"type,omitempty"`
}

// CustomerInfo captures the buyer details supplied at checkout.
type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}
