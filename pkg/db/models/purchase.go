package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/careerforge/careerforge-backend/pkg/enums"
)

// Purchase is one durable record per cart line of a successful payment.
// Item fields are snapshots copied from the cart at materialization time,
// never re-derived later. Rows are created once and never mutated here.
type Purchase struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	PaymentID *uuid.UUID           `gorm:"column:payment_id;type:uuid;index"`
	ItemID    string               `gorm:"column:item_id;not null"`
	Name      string               `gorm:"column:name;not null"`
	Price     decimal.Decimal      `gorm:"column:price;type:numeric(12,2);not null"`
	Type      string               `gorm:"column:type"`
	Status    enums.PurchaseStatus `gorm:"column:status;type:purchase_status;not null;default:'ACTIVE'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
