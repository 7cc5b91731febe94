package store_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
	"pengeluaran/internal/store"
	"pengeluaran/internal/store/memory"
)

type countingBackend struct {
	store.Backend
	reads atomic.Int32
	err   error
}

func (c *countingBackend) ReadAll(ctx context.Context) ([]core.Expense, error) {
	c.reads.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.Backend.ReadAll(ctx)
}

func sample(desc string, amount int64) core.Expense {
	return core.Expense{
		Date:        core.NewDate(2024, 1, 1),
		Amount:      core.Rupiah(amount),
		Category:    core.FoodAndDrink,
		Description: desc,
	}
}

func TestLoadIsCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	b := &countingBackend{Backend: memory.New(sample("a", 1))}
	s := store.NewCached(b)

	for i := 0; i < 3; i++ {
		records, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
	}
	assert.EqualValues(t, 1, b.reads.Load())

	_, err := s.Append(ctx, sample("b", 2))
	require.NoError(t, err)
	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.EqualValues(t, 2, b.reads.Load())

	s.Invalidate()
	_, _ = s.Load(ctx)
	assert.EqualValues(t, 3, b.reads.Load())
}

func TestLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := store.NewCached(memory.New(sample("a", 1)))

	first, err := s.Load(ctx)
	require.NoError(t, err)
	first[0].Description = "changed"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].Description)
}

func TestAppendPreservesOrderAndValidates(t *testing.T) {
	ctx := context.Background()
	s := store.NewCached(memory.New())

	for i := 1; i <= 3; i++ {
		_, err := s.Append(ctx, sample(fmt.Sprint(i), int64(i)))
		require.NoError(t, err)
	}
	_, err := s.Append(ctx, sample("", 5))
	require.ErrorIs(t, err, core.ErrEmptyDescription)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, fmt.Sprint(i+1), r.Description)
	}
}

func TestDeleteAtZeroEmptiesStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewCached(memory.New(sample("a", 1), sample("b", 2), sample("c", 3)))

	for i := 3; i > 0; i-- {
		records, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, records, i)
		require.NoError(t, s.DeleteAt(ctx, 0))
	}
	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteAtOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := store.NewCached(memory.New(sample("a", 1)))

	require.ErrorIs(t, s.DeleteAt(ctx, 1), store.ErrIndexOutOfRange)
	require.ErrorIs(t, s.DeleteAt(ctx, -1), store.ErrIndexOutOfRange)
	records, _ := s.Load(ctx)
	assert.Len(t, records, 1)
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	s := store.NewCached(memory.New(sample("a", 1), sample("b", 2)))

	records, err := s.Load(ctx)
	require.NoError(t, err)
	removed, err := s.DeleteByID(ctx, records[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Description)

	records, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Description)

	_, err = s.DeleteByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppendReturnsStoredRecord(t *testing.T) {
	ctx := context.Background()
	s := store.NewCached(memory.New(sample("a", 1)))

	stored, err := s.Append(ctx, sample("b", 2))
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, records[1], stored)
}

func TestDeleteFiltered(t *testing.T) {
	ctx := context.Background()
	other := sample("bus", 3)
	other.Category = core.Transport
	s := store.NewCached(memory.New(sample("a", 1), other, sample("c", 2)))
	food := filter.Criteria{Category: core.FoodAndDrink}

	removed, err := s.DeleteFiltered(ctx, food, 1)
	require.NoError(t, err)
	assert.Equal(t, "c", removed.Description)

	_, err = s.DeleteFiltered(ctx, food, 1)
	require.ErrorIs(t, err, filter.ErrPositionOutOfRange)

	records, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "bus", records[1].Description)
}

func TestConcurrentDeleteFilteredRemovesDistinctRecords(t *testing.T) {
	ctx := context.Background()
	const n = 8
	seed := make([]core.Expense, n)
	for i := range seed {
		seed[i] = sample(fmt.Sprint(i), int64(i+1))
	}
	s := store.NewCached(memory.New(seed...))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		removed = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := s.DeleteFiltered(ctx, filter.Criteria{}, 0)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, removed[e.ID], "record %s removed twice", e.ID)
			removed[e.ID] = true
		}()
	}
	wg.Wait()

	assert.Len(t, removed, n)
	records, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMalformedLoadIsRecoverable(t *testing.T) {
	b := &countingBackend{Backend: memory.New(), err: fmt.Errorf("%w: line 2", store.ErrMalformed)}
	s := store.NewCached(b)

	records, err := s.Load(context.Background())
	require.ErrorIs(t, err, store.ErrMalformed)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	s := store.NewCached(memory.New(sample("a", 1)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := s.Load(ctx)
			assert.NoError(t, err)
			assert.Len(t, records, 1)
		}()
	}
	wg.Wait()
}

type closingBackend struct {
	store.Backend
	closed bool
}

func (c *closingBackend) Close() error {
	c.closed = true
	return nil
}

func TestCloseReleasesBackend(t *testing.T) {
	b := &closingBackend{Backend: memory.New()}
	s := store.NewCached(b)

	require.NoError(t, s.Close())
	assert.True(t, b.closed)

	// backends without resources close cleanly
	require.NoError(t, store.NewCached(memory.New()).Close())
}
