package search

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/job"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
	"github.com/innovatorsofhonour/innovators/internal/app/seed"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

func newService(store *memory.Store) *Service {
	return New(Stores{Users: store, Solutions: store, Jobs: store, Courses: store, Events: store}, logger.Discard())
}

func TestStatsAfterSeed(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := seed.New(store, logger.Discard()).Run(ctx)
	require.NoError(t, err)

	stats, err := newService(store).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Members: 1, Solutions: 3, Jobs: 2, Courses: 2, Events: 3}, stats)

	later := newService(store).WithClock(func() time.Time { return time.Now().AddDate(0, 1, 0) })
	stats, err = later.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Events)
}

func TestSearchTruncatesLongDescriptions(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	long := strings.Repeat("é", 150)
	_, err := store.CreateSolution(ctx, solution.Solution{Title: "Long AI", Description: long})
	require.NoError(t, err)
	_, err = store.CreateSolution(ctx, solution.Solution{Title: "Short AI", Description: "tiny"})
	require.NoError(t, err)

	res, err := newService(store).Search(ctx, "AI", ScopeSolutions)
	require.NoError(t, err)
	require.Len(t, res.Solutions, 2)
	assert.Nil(t, res.Jobs)
	assert.Nil(t, res.Courses)

	byTitle := map[string]string{}
	for _, s := range res.Solutions {
		byTitle[s.Title] = s.Description
	}
	assert.Equal(t, 100+len("..."), utf8.RuneCountInString(byTitle["Long AI"]))
	assert.True(t, strings.HasSuffix(byTitle["Long AI"], "..."))
	assert.Equal(t, "tiny", byTitle["Short AI"])

	stored, err := store.GetSolution(ctx, res.Solutions[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 150, utf8.RuneCountInString(stored.Description))
}

func TestSearchScopesAndLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for i := 0; i < 12; i++ {
		_, err := store.CreateJob(ctx, job.Job{Title: "Go developer", Description: "backend"})
		require.NoError(t, err)
	}

	svc := newService(store)
	res, err := svc.Search(ctx, "developer", ScopeAll)
	require.NoError(t, err)
	assert.Len(t, res.Jobs, 10)
	assert.NotNil(t, res.Solutions)
	assert.Empty(t, res.Solutions)
	assert.NotNil(t, res.Courses)

	res, err = svc.Search(ctx, "developer", Scope("events"))
	require.NoError(t, err)
	assert.Nil(t, res.Solutions)
	assert.Nil(t, res.Jobs)
	assert.Nil(t, res.Courses)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "ab...", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("", 5))
}
