package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	_ = NewUserRepository(db)

	email := "test@example.com"
	user := testutil.TestUser(t, db, testutil.WithEmail(email))

	assert.NotZero(t, user.ID)
	assert.Equal(t, email, *user.Email)
}

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	// 创建测试用户
	created := testutil.TestUser(t, db)

	// 查询用户
	found, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Username, found.Username)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	_, err := repo.GetByID(99999)
	assert.Error(t, err)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	email := "unique@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	found, err := repo.GetByEmail(email)
	require.NoError(t, err)
	assert.Equal(t, email, *found.Email)
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	email := "exists@example.com"
	testutil.TestUser(t, db, testutil.WithEmail(email))

	exists, err := repo.ExistsByEmail(email)
	require.NoError(t, err)
	assert.True(t, exists)

	notExists, err := repo.ExistsByEmail("notexists@example.com")
	require.NoError(t, err)
	assert.False(t, notExists)
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	username := "uniqueuser"
	testutil.TestUser(t, db, testutil.WithUsername(username))

	exists, err := repo.ExistsByUsername(username)
	require.NoError(t, err)
	assert.True(t, exists)

	notExists, err := repo.ExistsByUsername("notexistsuser")
	require.NoError(t, err)
	assert.False(t, notExists)
}

func TestUserRepository_IncrementWatched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)

	t.Run("below limit increments counters and points", func(t *testing.T) {
		user := testutil.TestUser(t, db, testutil.WithWatched(199, 200), testutil.WithPoints(10))

		ok, err := repo.IncrementWatched(user.ID, model.PointsToUnits(0.5))
		require.NoError(t, err)
		assert.True(t, ok)

		updated, err := repo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 200, updated.WatchedAds)
		assert.Equal(t, model.PointsToUnits(10.5), updated.Points)
		assert.Equal(t, model.PointsToUnits(0.5), updated.EarnedPoints)
	})

	t.Run("at limit leaves row untouched", func(t *testing.T) {
		user := testutil.TestUser(t, db, testutil.WithWatched(200, 200), testutil.WithPoints(3))

		ok, err := repo.IncrementWatched(user.ID, model.PointsToUnits(0.5))
		require.NoError(t, err)
		assert.False(t, ok)

		updated, err := repo.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, 200, updated.WatchedAds)
		assert.Equal(t, model.PointsToUnits(3), updated.Points)
		assert.Zero(t, updated.EarnedPoints)
	})

	t.Run("unknown user", func(t *testing.T) {
		ok, err := repo.IncrementWatched(99999, 50)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUserRepository_DeductPoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithPoints(10))

	ok, err := repo.DeductPoints(user.ID, model.PointsToUnits(10.01))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeductPoints(user.ID, model.PointsToUnits(10))
	require.NoError(t, err)
	assert.True(t, ok)

	updated, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, updated.Points)
}

func TestUserRepository_CreditPoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithPoints(1))

	require.NoError(t, repo.CreditPoints(user.ID, model.PointsToUnits(2.25)))
	require.NoError(t, repo.CreditEarned(user.ID, model.PointsToUnits(1)))

	updated, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PointsToUnits(4.25), updated.Points)
	assert.Equal(t, model.PointsToUnits(1), updated.EarnedPoints)
}

func TestUserRepository_ResetWatchWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	now := time.Now().UTC()
	next := now.Add(24 * time.Hour)

	expired := testutil.TestUser(t, db, testutil.WithWatched(50, 200), testutil.WithWatchResetAt(now.Add(-time.Minute)))
	current := testutil.TestUser(t, db, testutil.WithWatched(30, 200), testutil.WithWatchResetAt(now.Add(time.Hour)))

	reset, err := repo.ResetWatchWindow(expired.ID, now, next)
	require.NoError(t, err)
	assert.True(t, reset)

	reset, err = repo.ResetWatchWindow(current.ID, now, next)
	require.NoError(t, err)
	assert.False(t, reset)

	// 再次调用不应重复重置
	reset, err = repo.ResetWatchWindow(expired.ID, now, next)
	require.NoError(t, err)
	assert.False(t, reset)

	got, err := repo.GetByID(expired.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.WatchedAds)

	got, err = repo.GetByID(current.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.WatchedAds)
}

func TestUserRepository_ResetExpiredWindows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	now := time.Now().UTC()

	testutil.TestUser(t, db, testutil.WithWatched(5, 200), testutil.WithWatchResetAt(now.Add(-time.Hour)))
	testutil.TestUser(t, db, testutil.WithWatched(7, 200), testutil.WithWatchResetAt(now.Add(-2*time.Hour)))
	fresh := testutil.TestUser(t, db, testutil.WithWatched(9, 200), testutil.WithWatchResetAt(now.Add(time.Hour)))

	n, err := repo.ResetExpiredWindows(now, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.GetByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.WatchedAds)
}

func TestUserRepository_ResetAllWindows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	now := time.Now().UTC()

	a := testutil.TestUser(t, db, testutil.WithWatched(5, 200), testutil.WithWatchResetAt(now.Add(time.Hour)))
	testutil.TestUser(t, db, testutil.WithWatched(7, 200), testutil.WithWatchResetAt(now.Add(-time.Hour)))

	n, err := repo.ResetAllWindows(now.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.WatchedAds)
}

func TestUserRepository_SetDailyLimitAndRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db)

	require.NoError(t, repo.SetDailyLimit(user.ID, 50))
	require.NoError(t, repo.SetRole(user.ID, model.RoleAdmin))
	require.NoError(t, repo.SetStatus(user.ID, model.UserStatusSuspended))

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.DailyLimit)
	assert.True(t, got.IsAdmin())
	assert.True(t, got.IsSuspended())
}

func TestUserRepository_WithTx(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserRepository(db)
	user := testutil.TestUser(t, db, testutil.WithPoints(5))

	// 事务回滚后积分不变
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).CreditPoints(user.ID, model.PointsToUnits(5)); err != nil {
			return err
		}
		return errors.New("rollback")
	})
	require.Error(t, err)

	got, err := repo.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PointsToUnits(5), got.Points)
}
