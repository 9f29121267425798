package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/interntrack/internal/domain"
	"github.com/aryan0dhankhar/interntrack/internal/testutil"
)

func TestSweepRemovesOnlyExpiredTokens(t *testing.T) {
	repo := testutil.NewMemTokenRepo()
	ctx := context.Background()

	stale := &domain.Token{Key: "stale", UserID: "u1", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &domain.Token{Key: "fresh", UserID: "u2", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	sweeper := NewTokenSweeper(repo, 24*time.Hour, time.Minute, testutil.NewLogger())
	sweeper.Sweep(ctx)

	_, err := repo.GetByKey(ctx, "stale")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = repo.GetByKey(ctx, "fresh")
	assert.NoError(t, err)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	repo := testutil.NewMemTokenRepo()
	sweeper := NewTokenSweeper(repo, 24*time.Hour, 10*time.Millisecond, testutil.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
