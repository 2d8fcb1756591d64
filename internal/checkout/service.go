package checkout

import (
	"context"
	"encoding/json"

	"github.com/careerforge/careerforge-backend/internal/payments"
	"github.com/careerforge/careerforge-backend/pkg/db"
	"github.com/careerforge/careerforge-backend/pkg/db/models"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	pkgerrors "github.com/careerforge/careerforge-backend/pkg/errors"
	"github.com/careerforge/careerforge-backend/pkg/gateway"
	"github.com/careerforge/careerforge-backend/pkg/logger"
	"github.com/careerforge/careerforge-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type orderCreator interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.CreateOrderResponse, error)
}

// InitiateParams describes a checkout session to open.
type InitiateParams struct {
	UserID   uuid.UUID
	Currency string
	Customer types.CustomerInfo
	Cart     []types.CartLine
}

// InitiateResult carries what the frontend needs to hand the browser to the
// gateway's hosted payment page.
type InitiateResult struct {
	PaymentID   uuid.UUID
	GID         string
	RedirectURL string
	Amount      decimal.Decimal
}

// Service opens checkout sessions: it reserves a PENDING payment row with
// the cart snapshot before either delivery channel can possibly fire.
type Service interface {
	Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error)
}

// ServiceParams wires checkout dependencies.
type ServiceParams struct {
	PaymentsRepo payments.Repository
	Gateway      orderCreator
	Logger       *logger.Logger
}

type service struct {
	paymentsRepo payments.Repository
	gateway      orderCreator
	logg         *logger.Logger
}

// NewService validates and wires the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.PaymentsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments repository required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway client required")
	}
	return &service{
		paymentsRepo: params.PaymentsRepo,
		gateway:      params.Gateway,
		logg:         params.Logger,
	}, nil
}

func (s *service) Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(params.Cart) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must not be empty")
	}

	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}

	total := decimal.Zero
	for _, line := range params.Cart {
		total = total.Add(line.Price)
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total must be positive")
	}

	paymentID := uuid.New()
	order, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderRequest{
		MerchantTxnID: paymentID.String(),
		Amount:        total,
		Currency:      currency,
		CustomerEmail: params.Customer.Email,
		CustomerName:  params.Customer.Name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	customer := params.Customer
	payment := &models.Payment{
		ID:             paymentID,
		GatewayOrderID: order.GID,
		UserID:         params.UserID,
		Amount:         total,
		Currency:       currency,
		Status:         enums.PaymentStatusPending,
		Metadata: types.PaymentMetadata{
			Cart:       params.Cart,
			Customer:   &customer,
			SessionRaw: json.RawMessage(order.Raw),
		},
	}

	if err := s.paymentsRepo.Create(ctx, payment); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "gateway order already recorded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist pending payment")
	}

	if s.logg != nil {
		ctx = s.logg.WithGatewayOrderID(ctx, order.GID)
		s.logg.Info(ctx, "checkout session opened")
	}

	return &InitiateResult{
		PaymentID:   payment.ID,
		GID:         order.GID,
		RedirectURL: order.RedirectURL,
		Amount:      total,
	}, nil
}
