package payments

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/careerforge/careerforge-backend/pkg/db/models"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	"github.com/careerforge/careerforge-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  gateway_order_id TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  amount TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'PENDING',
  metadata TEXT,
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(payments).Error)
	return db
}

func seedPendingPayment(t *testing.T, db *gorm.DB, gid string) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		ID:             uuid.New(),
		GatewayOrderID: gid,
		UserID:         uuid.New(),
		Amount:         decimal.RequireFromString("199.00"),
		Currency:       "USD",
		Status:         enums.PaymentStatusPending,
		Metadata: types.PaymentMetadata{
			Cart: []types.CartLine{{ItemID: "resume-review", Name: "Resume Review", Price: decimal.RequireFromString("199.00"), Type: "service"}},
		},
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func TestTransitionFromPendingWinsOnce(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gid := "gid-" + uuid.NewString()
	seeded := seedPendingPayment(t, db, gid)

	metadata := seeded.Metadata
	metadata.SetChannelRaw(enums.ChannelCallback, json.RawMessage(`{"status":"SUCCESS"}`))

	won, err := repo.TransitionFromPending(ctx, gid, enums.PaymentStatusSuccess, nil, metadata)
	require.NoError(t, err)
	assert.True(t, won)

	// A redundant delivery attempts the same transition and must lose.
	won, err = repo.TransitionFromPending(ctx, gid, enums.PaymentStatusFailed, nil, metadata)
	require.NoError(t, err)
	assert.False(t, won)

	stored, err := repo.FindByGatewayOrderID(ctx, gid)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, enums.PaymentStatusSuccess, stored.Status)
	assert.JSONEq(t, `{"status":"SUCCESS"}`, string(stored.Metadata.CallbackRaw))
}

func TestTransitionFromPendingRecordsFailureReason(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gid := "gid-" + uuid.NewString()
	seeded := seedPendingPayment(t, db, gid)

	reason := "insufficient funds"
	won, err := repo.TransitionFromPending(ctx, gid, enums.PaymentStatusFailed, &reason, seeded.Metadata)
	require.NoError(t, err)
	assert.True(t, won)

	stored, err := repo.FindByGatewayOrderID(ctx, gid)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, enums.PaymentStatusFailed, stored.Status)
	require.NotNil(t, stored.FailureReason)
	assert.Equal(t, reason, *stored.FailureReason)
}

func TestTransitionFromPendingRejectsNonTerminalTarget(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	gid := "gid-" + uuid.NewString()
	seedPendingPayment(t, db, gid)

	_, err := repo.TransitionFromPending(context.Background(), gid, enums.PaymentStatusPending, nil, types.PaymentMetadata{})
	require.Error(t, err)
}

func TestFindByGatewayOrderIDMissingRow(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	payment, err := repo.FindByGatewayOrderID(context.Background(), "gid-"+uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, payment)
}

func TestArchiveChannelRawKeepsOtherChannel(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gid := "gid-" + uuid.NewString()
	seeded := seedPendingPayment(t, db, gid)

	metadata := seeded.Metadata
	metadata.SetChannelRaw(enums.ChannelWebhook, json.RawMessage(`{"via":"webhook"}`))
	won, err := repo.TransitionFromPending(ctx, gid, enums.PaymentStatusSuccess, nil, metadata)
	require.NoError(t, err)
	require.True(t, won)

	require.NoError(t, repo.ArchiveChannelRaw(ctx, gid, enums.ChannelCallback, json.RawMessage(`{"via":"callback"}`)))

	stored, err := repo.FindByGatewayOrderID(ctx, gid)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.JSONEq(t, `{"via":"webhook"}`, string(stored.Metadata.WebhookRaw))
	assert.JSONEq(t, `{"via":"callback"}`, string(stored.Metadata.CallbackRaw))
	assert.Len(t, stored.Metadata.Cart, 1)
}

func TestArchiveChannelRawMissingRowIsNoop(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	err := repo.ArchiveChannelRaw(context.Background(), "gid-"+uuid.NewString(), enums.ChannelWebhook, json.RawMessage(`{}`))
	require.NoError(t, err)
}

func TestListPendingOlderThanPages(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-2 * time.Hour)
	var seeded []*models.Payment
	for i := 0; i < 3; i++ {
		payment := seedPendingPayment(t, db, "gid-"+uuid.NewString())
		createdAt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Model(payment).UpdateColumn("created_at", createdAt).Error)
		seeded = append(seeded, payment)
	}
	// Too fresh to count as stuck.
	fresh := seedPendingPayment(t, db, "gid-"+uuid.NewString())
	require.NoError(t, db.Model(fresh).UpdateColumn("created_at", time.Now().UTC()).Error)

	cutoff := time.Now().UTC().Add(-time.Hour)

	page, next, err := repo.ListPendingOlderThan(ctx, cutoff, ListPendingParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)

	rest, last, err := repo.ListPendingOlderThan(ctx, cutoff, ListPendingParams{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, last)

	seen := map[string]bool{}
	for _, p := range append(page, rest...) {
		seen[p.GatewayOrderID] = true
	}
	for _, p := range seeded {
		assert.True(t, seen[p.GatewayOrderID], "missing %s", p.GatewayOrderID)
	}
	assert.False(t, seen[fresh.GatewayOrderID])
}
