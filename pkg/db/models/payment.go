package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/careerforge/careerforge-backend/pkg/enums"
	"github.com/careerforge/careerforge-backend/pkg/types"
)

// Payment is one row per checkout attempt, keyed externally by the
// gateway-assigned order id. Status moves PENDING -> SUCCESS|FAILED exactly
// once; the reconciliation repository enforces that with a conditional
// update, never a read-modify-write.
type Payment struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GatewayOrderID string                `gorm:"column:gateway_order_id;not null;unique"`
	UserID         uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	Amount         decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency       string                `gorm:"column:currency;not null;default:'USD'"`
	Status         enums.PaymentStatus   `gorm:"column:status;type:payment_status;not null;default:'PENDING'"`
	Metadata       types.PaymentMetadata `gorm:"column:metadata;type:jsonb"`
	FailureReason  *string               `gorm:"column:failure_reason"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
