package recent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/model"
	"storefront/store"
)

type fakeStore struct {
	GetFn func(ctx context.Context, key string) (string, error)
	SetFn func(ctx context.Context, key, value string) error
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) { return f.GetFn(ctx, key) }
func (f *fakeStore) Set(ctx context.Context, key, value string) error    { return f.SetFn(ctx, key, value) }
func (f *fakeStore) Close() error                                        { return nil }

func ids(ps []model.Product) []int {
	out := []int{}
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestRecord_OrderDedupeAndLimit(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(st, 3, nil)
	ctx := context.Background()

	for _, id := range []int{1, 2, 3, 2, 4} {
		require.NoError(t, l.Record(ctx, model.Product{ID: id}))
	}

	got, err := l.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 3}, ids(got))

	// the cart key is untouched
	_, err = st.Get(ctx, store.KeyCart)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProducts_EmptyAndMalformed(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(st, 0, nil)
	ctx := context.Background()

	got, err := l.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, st.Set(ctx, store.KeyRecentlyViewed, "{not json"))
	got, err = l.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	// a malformed list is replaced on the next record
	require.NoError(t, l.Record(ctx, model.Product{ID: 9}))
	got, _ = l.Products(ctx)
	assert.Equal(t, []int{9}, ids(got))
}

func TestStoreErrors(t *testing.T) {
	boom := errors.New("store down")
	l := New(&fakeStore{
		GetFn: func(context.Context, string) (string, error) { return "", boom },
		SetFn: func(context.Context, string, string) error { return nil },
	}, 5, nil)

	_, err := l.Products(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, l.Record(context.Background(), model.Product{ID: 1}), boom)

	l = New(&fakeStore{
		GetFn: func(context.Context, string) (string, error) { return "", store.ErrNotFound },
		SetFn: func(context.Context, string, string) error { return boom },
	}, 5, nil)
	assert.ErrorIs(t, l.Record(context.Background(), model.Product{ID: 1}), boom)
}

func TestRecord_ConcurrentViewsKeepEveryEntry(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(st, 50, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for id := 1; id <= 30; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Record(ctx, model.Product{ID: id}))
		}()
	}
	wg.Wait()

	got, err := l.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 30)
	assert.ElementsMatch(t, func() []int {
		want := make([]int, 0, 30)
		for id := 1; id <= 30; id++ {
			want = append(want, id)
		}
		return want
	}(), ids(got))
}
