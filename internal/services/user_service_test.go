package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medihack/competency-service/internal/cache"
	"github.com/medihack/competency-service/internal/models"
)

func TestGetProfile(t *testing.T) {
	repo := newMockRepository()
	svc := NewUserService(repo, nil, testLogger())
	user := repo.addUser(&models.User{Username: "nurse", ExperienceYears: 2, Level: 2, StandardScore: 1})

	profile, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "nurse", profile.Username)
	assert.Equal(t, 2, profile.Level)

	_, err = svc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetProfile_ServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cm := cache.NewCacheManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	repo := newMockRepository()
	svc := NewUserService(repo, cm, testLogger())
	user := repo.addUser(&models.User{Username: "nurse"})

	for i := 0; i < 3; i++ {
		_, err := svc.GetProfile(context.Background(), user.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.reads)

	cache.InvalidateUserCache(context.Background(), cm, user.ID)
	_, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)
}

func TestGetProgress_Idempotent(t *testing.T) {
	repo := newMockRepository()
	svc := NewUserService(repo, nil, testLogger())
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Progress().Upsert(ctx, nil, "u1", "f1", 2.0, base))
	require.NoError(t, repo.Progress().Upsert(ctx, nil, "u1", "m1", 3.0, base.Add(time.Hour)))
	require.NoError(t, repo.Progress().Upsert(ctx, nil, "u1", "f1", 3.5, base.Add(2*time.Hour)))

	first, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	second, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "f1", first[0].CompetencyID)
	assert.Equal(t, 2.0, first[0].FirstScore)
	assert.InDelta(t, 1.5, first[0].ImprovementTrend, 1e-9)
}

func TestGetProgress_EmptyIsNotNil(t *testing.T) {
	svc := NewUserService(newMockRepository(), nil, testLogger())

	progress, err := svc.GetProgress(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, progress)
	assert.Empty(t, progress)
}

func TestGetHistory_LimitedAndNewestFirst(t *testing.T) {
	repo := newMockRepository()
	svc := NewUserService(repo, nil, testLogger())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < HistoryLimit+2; i++ {
		repo.addSession(&models.AssessmentSession{UserID: "u1", TotalCompetencies: 1, StartedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	repo.addSession(&models.AssessmentSession{UserID: "u2", TotalCompetencies: 1, StartedAt: base})

	history, err := svc.GetHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, HistoryLimit)
	assert.True(t, history[0].StartedAt.Equal(base.Add(time.Duration(HistoryLimit+1)*time.Hour)))
}
