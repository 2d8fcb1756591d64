package payments

import (
	"context"
	"time"

	"github.com/careerforge/careerforge-backend/internal/purchases"
	"github.com/careerforge/careerforge-backend/pkg/db/models"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	pkgerrors "github.com/careerforge/careerforge-backend/pkg/errors"
	"github.com/careerforge/careerforge-backend/pkg/gateway"
	"github.com/careerforge/careerforge-backend/pkg/logger"
	"github.com/careerforge/careerforge-backend/pkg/metrics"
	"github.com/careerforge/careerforge-backend/pkg/pagination"
	"github.com/careerforge/careerforge-backend/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Outcome classifies what a reconciliation attempt did.
type Outcome string

const (
	// OutcomeSuccess: this call transitioned the payment to SUCCESS and
	// owns the side effects.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailed: this call transitioned the payment to FAILED.
	OutcomeFailed Outcome = "failed"
	// OutcomeAlreadyTerminal: the payment was terminal before (or became
	// terminal during) this call; nothing was changed.
	OutcomeAlreadyTerminal Outcome = "already_terminal"
	// OutcomeNotFound: no payment matches the token's gid. Benign.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeRejected: the token decoded but carries no usable gid. Benign.
	OutcomeRejected Outcome = "rejected"
)

// Result reports the reconciliation outcome to the channel adapters, which
// translate it into a redirect or an acknowledgment.
type Result struct {
	Outcome          Outcome
	Status           enums.PaymentStatus
	Payment          *models.Payment
	PurchasesCreated int
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type mailer interface {
	SendPaymentReceipt(ctx context.Context, user *models.User, payment *models.Payment, items []types.CartLine) error
	SendAdminPaymentNotification(ctx context.Context, payment *models.Payment, user *models.User, items []types.CartLine) error
}

// Service is the single authority for payment reconciliation. Both delivery
// channels feed decoded tokens into Reconcile; the conditional status write
// guarantees at most one of them performs the transition and its side
// effects.
type Service interface {
	Reconcile(ctx context.Context, payload *gateway.TokenPayload, channel enums.Channel) (*Result, error)
	ListPending(ctx context.Context, olderThan time.Duration, params ListPendingParams) ([]models.Payment, *pagination.Cursor, error)
}

// ServiceParams wires reconciliation dependencies.
type ServiceParams struct {
	Repo         Repository
	Materializer purchases.Service
	Users        userFinder
	Mailer       mailer
	Metrics      *metrics.ReconciliationMetrics
	Logger       *logger.Logger
}

type service struct {
	repo         Repository
	materializer purchases.Service
	users        userFinder
	mailer       mailer
	metrics      *metrics.ReconciliationMetrics
	logg         *logger.Logger
}

// NewService validates and wires the reconciliation core.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments repository required")
	}
	if params.Materializer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "purchase materializer required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repository required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mailer required")
	}
	return &service{
		repo:         params.Repo,
		materializer: params.Materializer,
		users:        params.Users,
		mailer:       params.Mailer,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

func (s *service) Reconcile(ctx context.Context, payload *gateway.TokenPayload, channel enums.Channel) (*Result, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(channel.String(), time.Since(start))
	}()

	if s.logg != nil {
		ctx = s.logg.WithChannel(ctx, channel.String())
	}

	if payload == nil || payload.GID == "" {
		if s.logg != nil {
			s.logg.Warn(ctx, "gateway token carries no gid, skipping reconciliation")
		}
		return s.finish(channel, &Result{Outcome: OutcomeRejected}), nil
	}

	if s.logg != nil {
		ctx = s.logg.WithGatewayOrderID(ctx, payload.GID)
	}

	payment, err := s.repo.FindByGatewayOrderID(ctx, payload.GID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up payment")
	}
	if payment == nil {
		if s.logg != nil {
			s.logg.Info(ctx, "no payment matches gateway order id")
		}
		return s.finish(channel, &Result{Outcome: OutcomeNotFound}), nil
	}

	if payment.Status.IsTerminal() {
		s.archiveRaw(ctx, payload, channel)
		if s.logg != nil {
			s.logg.Info(ctx, "payment already terminal, skipping transition")
		}
		return s.finish(channel, &Result{
			Outcome: OutcomeAlreadyTerminal,
			Status:  payment.Status,
			Payment: payment,
		}), nil
	}

	next := enums.PaymentStatusFailed
	if gateway.IsSuccessStatus(payload.Status) {
		next = enums.PaymentStatusSuccess
	}

	var failureReason *string
	if next == enums.PaymentStatusFailed {
		reason := payload.FailureReason
		if reason == "" {
			reason = payload.Status
		}
		failureReason = &reason
	}

	merged := payment.Metadata
	merged.SetChannelRaw(channel, payload.Raw)

	won, err := s.repo.TransitionFromPending(ctx, payload.GID, next, failureReason, merged)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition payment status")
	}

	if !won {
		// A concurrent delivery completed the transition between our read
		// and the conditional write. Keep our evidence, change nothing else.
		s.archiveRaw(ctx, payload, channel)
		status := enums.PaymentStatusPending
		if current, rerr := s.repo.FindByGatewayOrderID(ctx, payload.GID); rerr == nil && current != nil {
			status = current.Status
			payment = current
		}
		if s.logg != nil {
			s.logg.Info(ctx, "lost status transition to concurrent delivery")
		}
		return s.finish(channel, &Result{
			Outcome: OutcomeAlreadyTerminal,
			Status:  status,
			Payment: payment,
		}), nil
	}

	payment.Status = next
	payment.Metadata = merged
	payment.FailureReason = failureReason

	result := &Result{
		Outcome: OutcomeFailed,
		Status:  next,
		Payment: payment,
	}

	if next == enums.PaymentStatusSuccess {
		result.Outcome = OutcomeSuccess

		created, err := s.materializer.Materialize(ctx, payment, payment.Metadata.Cart)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "materialize purchases")
		}
		result.PurchasesCreated = created

		if created > 0 {
			s.sendNotifications(ctx, payment, payment.Metadata.Cart)
		}
	}

	if s.logg != nil {
		s.logg.Info(ctx, "payment reconciled to "+next.String())
	}
	return s.finish(channel, result), nil
}

// finish records metrics for the attempt and passes the result through.
func (s *service) finish(channel enums.Channel, result *Result) *Result {
	s.metrics.IncOutcome(channel.String(), string(result.Outcome))
	return result
}

// archiveRaw is best-effort: losing the raw payload of a redundant delivery
// never fails the request.
func (s *service) archiveRaw(ctx context.Context, payload *gateway.TokenPayload, channel enums.Channel) {
	if err := s.repo.ArchiveChannelRaw(ctx, payload.GID, channel, payload.Raw); err != nil && s.logg != nil {
		s.logg.Error(ctx, "archive channel payload", err)
	}
}

// sendNotifications dispatches the receipt and operator emails. Failures are
// logged and never propagate: email must not block the gateway response.
func (s *service) sendNotifications(ctx context.Context, payment *models.Payment, items []types.CartLine) {
	user, err := s.users.FindByID(ctx, payment.UserID)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "load user for payment notifications", err)
		}
		return
	}
	if user == nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "payment owner not found, skipping notifications")
		}
		return
	}

	sendErr := multierr.Combine(
		s.mailer.SendPaymentReceipt(ctx, user, payment, items),
		s.mailer.SendAdminPaymentNotification(ctx, payment, user, items),
	)
	if sendErr != nil && s.logg != nil {
		s.logg.Error(ctx, "send payment notifications", sendErr)
	}
}

// ListPending surfaces payments stuck in PENDING longer than olderThan for
// manual review.
func (s *service) ListPending(ctx context.Context, olderThan time.Duration, params ListPendingParams) ([]models.Payment, *pagination.Cursor, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	rows, next, err := s.repo.ListPendingOlderThan(ctx, cutoff, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending payments")
	}
	return rows, next, nil
}
