package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// one connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(&models.User{}, &models.Consumer{}, &models.Auth{})
	require.NoError(t, err)

	return db
}

// fixedClock returns a clock that can be moved by tests
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)
	second, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, first.RefreshToken, second.RefreshToken)

	var count int64
	require.NoError(t, db.Model(&models.Auth{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateSeparatesPairs(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	a, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)
	b, err := store.GetOrCreate(ctx, "user-1", "consumer-2")
	require.NoError(t, err)
	c, err := store.GetOrCreate(ctx, "user-2", "consumer-1")
	require.NoError(t, err)

	assert.NotEqual(t, a.AccessToken, b.AccessToken)
	assert.NotEqual(t, a.AccessToken, c.AccessToken)
	assert.NotEqual(t, b.AccessToken, c.AccessToken)
}

func TestGetOrCreateRenewsAfterDeletion(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Auth{}, "id = ?", first.ID).Error)

	second, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestGetOrCreateLifetimes(t *testing.T) {
	db := setupTestDB(t)
	clock := newFixedClock()
	store := NewGormTokenStore(db, WithClock(clock.Now))

	grant, err := store.GetOrCreate(context.Background(), "user-1", "consumer-1")
	require.NoError(t, err)

	issuedAt := clock.Now()
	assert.WithinDuration(t, issuedAt.Add(86400*time.Second), grant.ExpireDate, time.Second)
	assert.WithinDuration(t, issuedAt.Add(7776000*time.Second), grant.EndDate, time.Second)
	assert.False(t, grant.ExpireDate.After(grant.EndDate))
	assert.Equal(t, int64(86400), grant.ExpiresIn(issuedAt))
}

func TestGetOrCreateReusesExpiredGrant(t *testing.T) {
	db := setupTestDB(t)
	clock := newFixedClock()
	store := NewGormTokenStore(db, WithClock(clock.Now))
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)
	second, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)

	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Negative(t, second.ExpiresIn(clock.Now()))
}

func TestGetOrCreateTokenShape(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)

	grant, err := store.GetOrCreate(context.Background(), "user-1", "consumer-1")
	require.NoError(t, err)

	assert.Len(t, grant.AccessToken, 48)
	assert.Len(t, grant.RefreshToken, 96)
	assert.NotEqual(t, grant.AccessToken, grant.RefreshToken[:48])
}

func TestInsertOrLoadKeepsTheStoredGrant(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	winner, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)

	// a racing caller that missed the winner's row still ends up with it
	loser := &models.Auth{
		UserID:       "user-1",
		ConsumerID:   "consumer-1",
		AccessToken:  "late-access",
		RefreshToken: "late-refresh",
		ExpireDate:   store.Now().Add(time.Hour),
		EndDate:      store.Now().Add(2 * time.Hour),
	}
	got, err := store.insertOrLoad(ctx, loser)
	require.NoError(t, err)

	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, winner.AccessToken, got.AccessToken)
}

func TestGetOrCreateConcurrentCallsShareOneGrant(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	const callers = 8
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			grant, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
			if assert.NoError(t, err) {
				tokens[i] = grant.AccessToken
			}
		}(i)
	}
	wg.Wait()

	for _, token := range tokens {
		assert.Equal(t, tokens[0], token)
	}
	var count int64
	require.NoError(t, db.Model(&models.Auth{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetByAccess(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	grant, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)

	found, err := store.GetByAccess(ctx, grant.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.UserID)

	_, err = store.GetByAccess(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreHonoursCancellation(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Auth{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown refresh token", func(t *testing.T) {
		store := NewGormTokenStore(setupTestDB(t))
		_, err := store.Refresh(ctx, "missing")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("access token still valid", func(t *testing.T) {
		store := NewGormTokenStore(setupTestDB(t))
		grant, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
		require.NoError(t, err)

		_, err = store.Refresh(ctx, grant.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenStillValid)
	})

	t.Run("renews an expired access token", func(t *testing.T) {
		clock := newFixedClock()
		store := NewGormTokenStore(setupTestDB(t), WithClock(clock.Now))
		grant, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
		require.NoError(t, err)

		clock.Advance(25 * time.Hour)
		renewed, err := store.Refresh(ctx, grant.RefreshToken)
		require.NoError(t, err)

		assert.NotEqual(t, grant.AccessToken, renewed.AccessToken)
		assert.Equal(t, grant.RefreshToken, renewed.RefreshToken)
		assert.Equal(t, int64(86400), renewed.ExpiresIn(clock.Now()))

		stored, err := store.GetByAccess(ctx, renewed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, grant.ID, stored.ID)

		_, err = store.GetByAccess(ctx, grant.AccessToken)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expire date never passes end date", func(t *testing.T) {
		clock := newFixedClock()
		store := NewGormTokenStore(setupTestDB(t), WithClock(clock.Now), WithTTL(time.Hour, 90*time.Minute))
		grant, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
		require.NoError(t, err)

		clock.Advance(61 * time.Minute)
		renewed, err := store.Refresh(ctx, grant.RefreshToken)
		require.NoError(t, err)

		assert.True(t, renewed.ExpireDate.Equal(grant.EndDate))
		assert.LessOrEqual(t, renewed.ExpiresIn(clock.Now()), int64(29*60))
	})

	t.Run("grant ended", func(t *testing.T) {
		clock := newFixedClock()
		store := NewGormTokenStore(setupTestDB(t), WithClock(clock.Now), WithTTL(time.Hour, 2*time.Hour))
		grant, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
		require.NoError(t, err)

		clock.Advance(3 * time.Hour)
		_, err = store.Refresh(ctx, grant.RefreshToken)
		assert.ErrorIs(t, err, ErrGrantEnded)
	})
}

func TestRemoveByRefresh(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	grant, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)

	require.NoError(t, store.RemoveByRefresh(ctx, grant.RefreshToken))
	assert.ErrorIs(t, store.RemoveByRefresh(ctx, grant.RefreshToken), ErrInvalidRefreshToken)

	_, err = store.GetByAccess(ctx, grant.AccessToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveByUser(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)
	_, err = store.GetOrCreate(ctx, "user-1", "consumer-2")
	require.NoError(t, err)
	kept, err := store.GetOrCreate(ctx, "user-2", "consumer-1")
	require.NoError(t, err)

	n, err := store.RemoveByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.GetByAccess(ctx, kept.AccessToken)
	assert.NoError(t, err)
}

func TestDeleteEnded(t *testing.T) {
	db := setupTestDB(t)
	clock := newFixedClock()
	store := NewGormTokenStore(db, WithClock(clock.Now), WithTTL(time.Hour, 2*time.Hour))
	ctx := context.Background()

	old, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)
	clock.Advance(90 * time.Minute)
	fresh, err := store.GetOrCreate(ctx, "user-2", "consumer-1")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	n, err := store.DeleteEnded(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetByAccess(ctx, old.AccessToken)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetByAccess(ctx, fresh.AccessToken)
	assert.NoError(t, err)
}

func TestConsumerStoreGetBySecret(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormConsumerStore(db)
	ctx := context.Background()

	consumer := &models.Consumer{UserID: "user-1", Name: "test consumer", SecretCode: "S1"}
	require.NoError(t, db.Create(consumer).Error)

	found, err := store.GetBySecret(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, consumer.ID, found.ID)

	_, err = store.GetBySecret(ctx, "S2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithAccessGenerateSizes(t *testing.T) {
	db := setupTestDB(t)
	gen := &UUIDAccessGenerate{AccessUnits: 2, RefreshUnits: 3}
	store := NewGormTokenStore(db, WithAccessGenerate(gen))

	grant, err := store.GetOrCreate(context.Background(), "user-1", "consumer-1")
	require.NoError(t, err)
	assert.Len(t, grant.AccessToken, 96)
	assert.Len(t, grant.RefreshToken, 144)
}

// recordingGenerate captures what the store hands to its generator
type recordingGenerate struct {
	UUIDAccessGenerate
	calls []oauth2.GenerateBasic
	fresh []bool
}

func (g *recordingGenerate) Token(ctx context.Context, data *oauth2.GenerateBasic, isGenRefresh bool) (string, string, error) {
	g.calls = append(g.calls, *data)
	g.fresh = append(g.fresh, isGenRefresh)
	return g.UUIDAccessGenerate.Token(ctx, data, isGenRefresh)
}

func TestGeneratorReceivesGrantOwners(t *testing.T) {
	db := setupTestDB(t)
	clock := newFixedClock()
	gen := &recordingGenerate{UUIDAccessGenerate: *NewUUIDAccessGenerate()}
	store := NewGormTokenStore(db, WithClock(clock.Now), WithAccessGenerate(gen))
	ctx := context.Background()
	issued := clock.Now()

	grant, err := store.GetOrCreate(ctx, "user-1", "consumer-1")
	require.NoError(t, err)

	clock.Advance(DefaultAccessTTL + time.Second)
	_, err = store.Refresh(ctx, grant.RefreshToken)
	require.NoError(t, err)

	require.Len(t, gen.calls, 2)
	assert.Equal(t, []bool{true, false}, gen.fresh)
	for _, data := range gen.calls {
		assert.Equal(t, "consumer-1", data.Client.GetID())
		assert.Equal(t, "user-1", data.UserID)
	}
	assert.True(t, issued.Equal(gen.calls[0].CreateAt))
	assert.True(t, clock.Now().Equal(gen.calls[1].CreateAt))
}
