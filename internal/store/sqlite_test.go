package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/busfactor-cli/internal/edgar"
)

func newTestCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLite(filepath.Join(t.TempDir(), "fye.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Migrate(context.Background()))
	return c
}

func TestSQLiteCache_GetMissing(t *testing.T) {
	c := newTestCache(t)

	_, ok, err := c.Get(edgar.CIKYear{CIK10: "0000320193", FYear: 2020})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteCache_PutGetRoundTrip(t *testing.T) {
	c := newTestCache(t)

	key := edgar.CIKYear{CIK10: "0000320193", FYear: 2020}
	in := edgar.FYE{
		Month:  9,
		Date:   time.Date(2020, 9, 26, 0, 0, 0, 0, time.UTC),
		Form:   "10-K",
		Accn:   "0000320193-20-000096",
		Source: "companyfacts",
	}
	require.NoError(t, c.Put(key, in))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, got.Month)
	assert.Equal(t, "2020-09-26", got.Date.Format("2006-01-02"))
	assert.Equal(t, "10-K", got.Form)
	assert.Equal(t, "0000320193-20-000096", got.Accn)
	assert.Equal(t, "cache", got.Source, "hits are attributed to the cache, not the original api")
}

func TestSQLiteCache_PutOverwrites(t *testing.T) {
	c := newTestCache(t)

	key := edgar.CIKYear{CIK10: "0000320193", FYear: 2021}
	require.NoError(t, c.Put(key, edgar.FYE{Month: 6, Source: "submissions"}))
	require.NoError(t, c.Put(key, edgar.FYE{Month: 12, Source: "companyfacts"}))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12, got.Month)
	assert.True(t, got.Date.IsZero())
}

func TestSQLiteCache_YearsIndependent(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Put(edgar.CIKYear{CIK10: "0000000001", FYear: 2019}, edgar.FYE{Month: 3, Source: "companyfacts"}))
	require.NoError(t, c.Put(edgar.CIKYear{CIK10: "0000000001", FYear: 2020}, edgar.FYE{Month: 12, Source: "companyfacts"}))

	got, ok, err := c.Get(edgar.CIKYear{CIK10: "0000000001", FYear: 2019})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Month)
}
