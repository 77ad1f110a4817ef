package confession

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghost.confess/internal/metrics"
	"ghost.confess/internal/store"
)

func newTestService(t *testing.T, opts Options) (*Service, *metrics.Aggregator) {
	t.Helper()
	st := store.NewMemoryStore(time.Hour)
	t.Cleanup(func() { st.Close() })
	agg := metrics.NewAggregator(0)
	return NewService(st, agg, opts), agg
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	cases := []struct {
		name       string
		sessionID  string
		ciphertext string
		nonce      string
	}{
		{"missing session", "", "abc", "xyz"},
		{"missing ciphertext", "sess", "", "xyz"},
		{"missing nonce", "sess", "abc", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.sessionID, tc.ciphertext, tc.nonce, time.Time{})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateFetchRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	id, err := svc.Create(ctx, "sess", "abc", "xyz", time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := svc.Fetch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Ciphertext)
	assert.Equal(t, "xyz", got.Nonce)
}

func TestFetchIncrementsReadCount(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	id, err := svc.Create(ctx, "sess", "abc", "xyz", time.Time{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Fetch(ctx, id)
		require.NoError(t, err, "read-many is the default policy")
	}
}

func TestDeleteOnReadPolicy(t *testing.T) {
	svc, _ := newTestService(t, Options{DeleteOnRead: true})
	ctx := context.Background()

	id, err := svc.Create(ctx, "sess", "abc", "xyz", time.Time{})
	require.NoError(t, err)

	first, err := svc.Fetch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "abc", first.Ciphertext)

	_, err = svc.Fetch(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteDelegates(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	id, err := svc.Create(ctx, "sess", "abc", "xyz", time.Time{})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.Fetch(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteKeepsMetricsSample(t *testing.T) {
	svc, agg := newTestService(t, Options{})
	ctx := context.Background()

	id, err := svc.Create(ctx, "sess", "confession-text", "xyz", time.Time{})
	require.NoError(t, err)

	before := agg.Aggregate()
	require.Equal(t, 1, before.TotalConfessions)

	_, err = svc.Delete(ctx, id)
	require.NoError(t, err)

	after := agg.Aggregate()
	assert.Equal(t, before, after, "deleting a confession must not touch its sample")
	assert.Equal(t, float64(len("confession-text")), after.AverageLength)
}

func TestCreateTimestampPolicy(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	now := time.Now().UTC().Truncate(time.Second)
	svc.now = func() time.Time { return now }

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"zero uses server time", time.Time{}, now},
		{"plausible is accepted", now.Add(-time.Hour), now.Add(-time.Hour)},
		{"far past is replaced", now.Add(-30 * 24 * time.Hour), now},
		{"far future is replaced", now.Add(30 * 24 * time.Hour), now},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := svc.Create(context.Background(), "sess", "abc", "xyz", tc.in)
			require.NoError(t, err)

			got, err := svc.Fetch(context.Background(), id)
			require.NoError(t, err)
			assert.True(t, got.Timestamp.Equal(tc.want), "got %v want %v", got.Timestamp, tc.want)
		})
	}
}

func TestExpiryWindow(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)
	t.Cleanup(func() { st.Close() })
	svc := NewService(st, metrics.NewAggregator(0), Options{})

	now := time.Now().UTC().Truncate(time.Second)
	svc.now = func() time.Time { return now }

	id, err := svc.Create(context.Background(), "sess", "abc", "xyz", time.Time{})
	require.NoError(t, err)

	got, err := st.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.ExpiresAt.Equal(now.Add(TTL)))
}
