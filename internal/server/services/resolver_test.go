package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

func TestResolveToday_CreatesEntryForLocalDay(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.resolver.ResolveToday(context.Background(), "u1")
	require.NoError(t, err)

	entries := env.store.Entries("u1")
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, timex.Date{Year: 2026, Month: time.March, Day: 1}, e.Date)
	assert.Equal(t, common.EntryComplete, e.Status)
	assert.Equal(t, common.SectionProfessional, e.SectionType)
	assert.Empty(t, e.Summary.Current)
	assert.Nil(t, e.Summary.Original)
}

func TestResolveToday_ReusesEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.resolver.ResolveToday(ctx, "u1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := env.resolver.ResolveToday(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	other, err := env.resolver.ResolveToday(ctx, "u2")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	env.clock.Advance(24 * time.Hour)
	next, err := env.resolver.ResolveToday(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first, next)
	assert.Len(t, env.store.Entries("u1"), 2)
}

func TestResolveToday_Concurrent(t *testing.T) {
	env := newTestEnv(t)

	const n = 20
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = env.resolver.ResolveToday(context.Background(), "u1")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Len(t, env.store.Entries("u1"), 1)
}

func TestResolveToday_IgnoresDeletedEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.resolver.ResolveToday(ctx, "u1")
	require.NoError(t, err)
	env.store.SoftDeleteEntry(first, env.clock.Now())

	second, err := env.resolver.ResolveToday(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestResolveToday_AmbiguousTimeoutVerifiesBeforeRetry(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetHooks(nil, failOnce("entries.Insert", common.ErrStoreTimeout))

	id, err := env.resolver.ResolveToday(context.Background(), "u1")
	require.NoError(t, err)

	entries := env.store.Entries("u1")
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Zero(t, env.observer.retry("entries.insert"))
}

func TestResolveToday_RetriesWriteThatDidNotLand(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetHooks(failOnce("entries.Insert", common.ErrStoreTimeout), nil)

	_, err := env.resolver.ResolveToday(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, env.store.Entries("u1"), 1)
	assert.Equal(t, 1, env.observer.retry("entries.insert"))
}

func TestResolveToday_GivesUpAfterAttempts(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetHooks(failAlways("entries.Insert", common.ErrStoreTimeout), nil)

	_, err := env.resolver.ResolveToday(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrStoreTimeout)
	assert.Empty(t, env.store.Entries("u1"))
	assert.Equal(t, 2, env.observer.retry("entries.insert"))
}

func TestResolveToday_NonTimeoutErrorNotRetried(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetHooks(failAlways("entries.Insert", errDiskFull), nil)

	_, err := env.resolver.ResolveToday(context.Background(), "u1")
	require.ErrorIs(t, err, errDiskFull)
	assert.Zero(t, env.observer.retry("entries.insert"))
}

func TestResolveToday_RequiresUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.resolver.ResolveToday(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorValidation)
}
