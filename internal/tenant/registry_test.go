package tenant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	for _, name := range []string{"default", "acme", "team_1", "a-b", "ABC"} {
		assert.True(t, ValidName(name), name)
	}
	for _, name := range []string{"", "a b", "../etc", "x;drop", "é"} {
		assert.False(t, ValidName(name), name)
	}
}

func TestRegistry_GetCachesPerTenant(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(func(_ context.Context, name string) (string, error) {
		calls.Add(1)
		return "res-" + name, nil
	})

	a, err := r.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "res-a", a)
	a2, err := r.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, a, a2)
	b, err := r.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "res-b", b)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestRegistry_GetRejectsInvalidName(t *testing.T) {
	r := NewRegistry(func(context.Context, string) (int, error) {
		t.Fatal("factory must not run")
		return 0, nil
	})
	_, err := r.Get(context.Background(), "bad name")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestRegistry_FailureIsNotCached(t *testing.T) {
	fail := true
	r := NewRegistry(func(context.Context, string) (int, error) {
		if fail {
			return 0, errors.New("connection refused")
		}
		return 7, nil
	})

	_, err := r.Get(context.Background(), "t")
	require.Error(t, err)
	assert.Empty(t, r.Names())

	fail = false
	v, err := r.Get(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestRegistry_ConcurrentFirstUseCreatesOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := NewRegistry(func(context.Context, string) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.Get(context.Background(), "shared")
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_FactoryOutlivesCallerContext(t *testing.T) {
	r := NewRegistry(func(ctx context.Context, _ string) (error, error) {
		return ctx.Err(), nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctxErr, err := r.Get(ctx, "t")
	require.NoError(t, err)
	assert.NoError(t, ctxErr)
}

func TestRegistry_Each(t *testing.T) {
	r := NewRegistry(func(_ context.Context, name string) (string, error) { return name, nil })
	for _, n := range []string{"c", "a", "b"} {
		_, err := r.Get(context.Background(), n)
		require.NoError(t, err)
	}
	var seen []string
	r.Each(func(name, item string) {
		assert.Equal(t, name, item)
		seen = append(seen, name)
	})
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}
