package payments

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ticketing/internal/shared/apperrors"
	"ticketing/internal/shared/database/dbtest"
	"ticketing/pkg/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepository(t *testing.T) (Repository, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t, &Payment{})
	return NewRepository(db), db
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	buyer, ticket := uuid.New(), uuid.New()

	payment, err := repo.Create(ctx, buyer, ticket, "pi_123", money.FromCents(5000), "")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, payment.ID)
	assert.Equal(t, money.DefaultCurrency, payment.Currency)
	assert.False(t, payment.IsFinalized())

	stored, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer, stored.UserID)
	assert.Equal(t, ticket, stored.TicketID)
	assert.Equal(t, "pi_123", stored.ProviderRef)
	assert.Equal(t, money.FromCents(5000), stored.Price)
	assert.Nil(t, stored.FinalizedAt)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := setupRepository(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPaymentNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRepository_Create_OneOpenPaymentPerTicket(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()
	ticket := uuid.New()

	first, err := repo.Create(ctx, uuid.New(), ticket, "pi_first", money.FromCents(100), "usd")
	require.NoError(t, err)

	_, err = repo.Create(ctx, uuid.New(), ticket, "pi_second", money.FromCents(100), "usd")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	changed, err := repo.MarkFinalized(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, changed)

	_, err = repo.Create(ctx, uuid.New(), ticket, "pi_third", money.FromCents(100), "usd")
	assert.NoError(t, err, "a finalized payment no longer blocks the ticket")
}

func TestRepository_FindByProviderRef(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	payment, err := repo.Create(ctx, uuid.New(), uuid.New(), "pi_known", money.FromCents(2500), "usd")
	require.NoError(t, err)

	found, err := repo.FindByProviderRef(ctx, "pi_known")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, payment.ID, found.ID)

	missing, err := repo.FindByProviderRef(ctx, "pi_unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_FindByProviderRef_DuplicateTakesOldest(t *testing.T) {
	repo, db := setupRepository(t)
	ctx := context.Background()

	older := Payment{UserID: uuid.New(), TicketID: uuid.New(), ProviderRef: "pi_dup", Price: 100, Currency: "usd", CreatedAt: time.Now().UTC().Add(-time.Minute)}
	newer := Payment{UserID: uuid.New(), TicketID: uuid.New(), ProviderRef: "pi_dup", Price: 100, Currency: "usd", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&older).Error)

	found, err := repo.FindByProviderRef(ctx, "pi_dup")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, older.ID, found.ID)
}

func TestRepository_MarkFinalized_Idempotent(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	payment, err := repo.Create(ctx, uuid.New(), uuid.New(), "pi_fin", money.FromCents(100), "usd")
	require.NoError(t, err)

	changed, err := repo.MarkFinalized(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FinalizedAt)
	firstStamp := *stored.FinalizedAt

	changed, err = repo.MarkFinalized(ctx, payment.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err = repo.GetByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.True(t, firstStamp.Equal(*stored.FinalizedAt), "timestamp must not move")
}

func TestRepository_MarkFinalized_Concurrent(t *testing.T) {
	repo, _ := setupRepository(t)
	ctx := context.Background()

	payment, err := repo.Create(ctx, uuid.New(), uuid.New(), "pi_race", money.FromCents(100), "usd")
	require.NoError(t, err)

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := repo.MarkFinalized(ctx, payment.ID)
			assert.NoError(t, err)
			if changed {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners)
}

func TestRepository_StoreFailure(t *testing.T) {
	repo := NewRepository(dbtest.Broken(t, &Payment{}))
	ctx := context.Background()

	_, err := repo.Create(ctx, uuid.New(), uuid.New(), "pi_x", money.FromCents(1), "usd")
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	_, err = repo.FindByProviderRef(ctx, "pi_x")
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)

	_, err = repo.MarkFinalized(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}
