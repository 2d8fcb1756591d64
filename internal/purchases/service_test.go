package purchases

import (
	"context"
	"testing"

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

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupPurchasesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	purchases := `
CREATE TABLE IF NOT EXISTS purchases (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  payment_id TEXT,
  item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price TEXT NOT NULL,
  type TEXT,
  status TEXT NOT NULL DEFAULT 'ACTIVE',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(purchases).Error)
	return db
}

func testPayment() *models.Payment {
	return &models.Payment{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: enums.PaymentStatusSuccess,
	}
}

func testCart() []types.CartLine {
	return []types.CartLine{
		{ItemID: "resume-review", Name: "Resume Review", Price: decimal.RequireFromString("199.00"), Type: "service"},
		{ItemID: "mock-interview", Name: "Mock Interview", Price: decimal.RequireFromString("120.50"), Type: "service"},
	}
}

func TestMaterializeCreatesOnePurchasePerLine(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)

	payment := testPayment()
	created, err := svc.Materialize(context.Background(), payment, testCart())
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	rows, err := NewRepository(db).ListByPaymentID(context.Background(), payment.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, payment.UserID, row.UserID)
		require.NotNil(t, row.PaymentID)
		assert.Equal(t, payment.ID, *row.PaymentID)
		assert.Equal(t, enums.PurchaseStatusActive, row.Status)
	}
}

func TestMaterializeIsIdempotentPerPayment(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)

	payment := testPayment()
	cart := testCart()

	created, err := svc.Materialize(context.Background(), payment, cart)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	created, err = svc.Materialize(context.Background(), payment, cart)
	require.NoError(t, err)
	assert.Zero(t, created)

	count, err := NewRepository(db).CountByPaymentID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestMaterializeEmptyCart(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)

	created, err := svc.Materialize(context.Background(), testPayment(), nil)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestMaterializeRequiresPayment(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)

	_, err = svc.Materialize(context.Background(), nil, testCart())
	require.Error(t, err)
}
