package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/ad_reward_server/internal/testutil"
)

func TestUserTaskRepository_GetOrCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserTaskRepository(db)
	user := testutil.TestUser(t, db)
	task := testutil.TestTask(t, db)
	now := time.Now().UTC()

	first, err := repo.GetOrCreate(user.ID, task.ID, now)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, 0, first.Progress)
	assert.False(t, first.Completed)

	// 第二次调用返回同一条记录
	second, err := repo.GetOrCreate(user.ID, task.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Table("user_tasks").Where("user_id = ? AND task_id = ?", user.ID, task.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUserTaskRepository_AdvanceAndComplete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserTaskRepository(db)
	user := testutil.TestUser(t, db)
	task := testutil.TestTask(t, db, testutil.WithTotalRequired(2))
	ut := testutil.TestUserTask(t, db, user.ID, task.ID)

	ok, err := repo.AdvanceProgress(ut.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.AdvanceProgress(ut.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// 已达到 total，不再推进
	ok, err = repo.AdvanceProgress(ut.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	now := time.Now().UTC()
	ok, err = repo.MarkCompleted(ut.ID, 2, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// 只能完成一次
	ok, err = repo.MarkCompleted(ut.ID, 2, now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.Get(user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Progress)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)
}

func TestUserTaskRepository_Reset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserTaskRepository(db)
	user := testutil.TestUser(t, db)
	task := testutil.TestTask(t, db)
	old := time.Now().UTC().Add(-48 * time.Hour)
	ut := testutil.TestUserTask(t, db, user.ID, task.ID,
		testutil.WithProgress(1),
		testutil.WithCompletedAt(old),
		testutil.WithLastResetAt(old),
		testutil.WithAttempts(3),
	)

	now := time.Now().UTC()
	require.NoError(t, repo.Reset(ut.ID, now))

	got, err := repo.Get(user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, 0, got.Attempts)
	assert.WithinDuration(t, now, got.LastResetAt, time.Second)
}

func TestUserTaskRepository_IncrementAttempts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserTaskRepository(db)
	user := testutil.TestUser(t, db)
	task := testutil.TestTask(t, db)
	ut := testutil.TestUserTask(t, db, user.ID, task.ID, testutil.WithAttempts(1))

	ok, err := repo.IncrementAttempts(ut.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementAttempts(ut.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	// 0 表示不限
	ok, err = repo.IncrementAttempts(ut.ID, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserTaskRepository_ListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewUserTaskRepository(db)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	t1 := testutil.TestTask(t, db)
	t2 := testutil.TestTask(t, db)

	testutil.TestUserTask(t, db, user.ID, t1.ID)
	testutil.TestUserTask(t, db, user.ID, t2.ID, testutil.WithProgress(1))
	testutil.TestUserTask(t, db, other.ID, t1.ID)

	byTask, err := repo.ListByUser(user.ID)
	require.NoError(t, err)
	assert.Len(t, byTask, 2)
	assert.Equal(t, 1, byTask[t2.ID].Progress)
}
