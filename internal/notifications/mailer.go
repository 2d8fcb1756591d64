package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/careerforge/careerforge-backend/pkg/config"
	"github.com/careerforge/careerforge-backend/pkg/db/models"
	pkgerrors "github.com/careerforge/careerforge-backend/pkg/errors"
	"github.com/careerforge/careerforge-backend/pkg/logger"
	"github.com/careerforge/careerforge-backend/pkg/types"
)

// Mailer dispatches payment emails. Callers treat every send as
// fire-and-forget; a failed send is logged upstream and never blocks the
// gateway response.
type Mailer interface {
	SendPaymentReceipt(ctx context.Context, user *models.User, payment *models.Payment, items []types.CartLine) error
	SendAdminPaymentNotification(ctx context.Context, payment *models.Payment, user *models.User, items []types.CartLine) error
}

type sendgridMailer struct {
	client     *sendgrid.Client
	from       string
	adminEmail string
	logg       *logger.Logger
}

// NewMailer wires a SendGrid-backed mailer.
func NewMailer(cfg config.SendgridConfig, logg *logger.Logger) (Mailer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sendgrid api key required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sendgrid from address required")
	}
	return &sendgridMailer{
		client:     sendgrid.NewSendClient(apiKey),
		from:       cfg.DefaultFrom,
		adminEmail: cfg.AdminEmail,
		logg:       logg,
	}, nil
}

func (m *sendgridMailer) SendPaymentReceipt(ctx context.Context, user *models.User, payment *models.Payment, items []types.CartLine) error {
	if user == nil || user.Email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "receipt recipient missing")
	}
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment required")
	}

	subject := fmt.Sprintf("Your CareerForge receipt for order %s", payment.GatewayOrderID)
	body := receiptBody(user, payment, items)

	message := mail.NewSingleEmail(
		mail.NewEmail("CareerForge", m.from),
		subject,
		mail.NewEmail(user.Name, user.Email),
		body,
		"",
	)
	return m.send(ctx, message, "payment receipt")
}

func (m *sendgridMailer) SendAdminPaymentNotification(ctx context.Context, payment *models.Payment, user *models.User, items []types.CartLine) error {
	if m.adminEmail == "" {
		// Operator notifications are optional in environments without an
		// admin inbox configured.
		return nil
	}
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment required")
	}

	subject := fmt.Sprintf("Payment received for order %s", payment.GatewayOrderID)
	body := adminBody(payment, user, items)

	message := mail.NewSingleEmail(
		mail.NewEmail("CareerForge", m.from),
		subject,
		mail.NewEmail("CareerForge Ops", m.adminEmail),
		body,
		"",
	)
	return m.send(ctx, message, "admin payment notification")
}

func (m *sendgridMailer) send(ctx context.Context, message *mail.SGMailV3, kind string) error {
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send "+kind)
	}
	if resp.StatusCode >= 400 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("send %s: sendgrid status %d", kind, resp.StatusCode))
	}
	if m.logg != nil {
		m.logg.Info(ctx, kind+" sent")
	}
	return nil
}

func receiptBody(user *models.User, payment *models.Payment, items []types.CartLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your purchase. Order %s, total %s %s.\n\n",
		user.Name, payment.GatewayOrderID, payment.Amount.StringFixed(2), payment.Currency)
	for _, item := range items {
		fmt.Fprintf(&b, "  - %s: %s %s\n", item.Name, item.Price.StringFixed(2), payment.Currency)
	}
	b.WriteString("\nThe CareerForge team\n")
	return b.String()
}

func adminBody(payment *models.Payment, user *models.User, items []types.CartLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payment %s settled: %s %s, %d item(s).\n",
		payment.GatewayOrderID, payment.Amount.StringFixed(2), payment.Currency, len(items))
	if user != nil {
		fmt.Fprintf(&b, "Customer: %s <%s>\n", user.Name, user.Email)
	}
	return b.String()
}
