package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(Config{Dir: t.TempDir()})
	require.NoError(t, err)
	return c
}

func TestKeyDerivation(t *testing.T) {
	base := Key("src/app.psr", []byte("component A() {}"))
	assert.Len(t, base, 32)

	assert.Equal(t, base, Key("src/app.psr", []byte("component A() {}")))
	assert.NotEqual(t, base, Key("src/other.psr", []byte("component A() {}")))
	assert.NotEqual(t, base, Key("src/app.psr", []byte("component B() {}")))
	assert.NotEqual(t, base, Key("src/app.psr", []byte("component A() {}"), "strict"))
}

func TestPutAndGet(t *testing.T) {
	c := newTestCache(t)
	key := Key("src/app.psr", []byte("source"))

	_, ok := c.Get(key)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, "src/app.psr", []byte("compiled output")))
	data, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "compiled output", string(data))

	stats := c.GetStats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, len("compiled output"), stats.TotalSize)
}

func TestPutIdenticalContentIsNoop(t *testing.T) {
	c := newTestCache(t)
	key := Key("a.psr", []byte("x"))
	require.NoError(t, c.Put(key, "a.psr", []byte("out")))
	first, _ := c.Get(key)
	require.NoError(t, c.Put(key, "a.psr", []byte("out")))
	second, _ := c.Get(key)
	assert.Equal(t, first, second)
	assert.EqualValues(t, int64(len("out")), c.GetStats().TotalSize)
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)
	key := Key("a.psr", []byte("x"))
	require.NoError(t, c.Put(key, "a.psr", []byte("out")))
	require.NoError(t, c.Delete(key))
	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.EqualValues(t, 0, c.GetStats().TotalSize)

	// deleting a missing key is fine
	require.NoError(t, c.Delete("no-such-key"))
}

func TestInvalidateSource(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Put(Key("a.psr", []byte("1")), "a.psr", []byte("one")))
	require.NoError(t, c.Put(Key("a.psr", []byte("2")), "a.psr", []byte("two")))
	require.NoError(t, c.Put(Key("b.psr", []byte("3")), "b.psr", []byte("three")))

	removed := c.InvalidateSource("a.psr")
	assert.Equal(t, 2, removed)

	_, ok := c.Get(Key("b.psr", []byte("3")))
	assert.True(t, ok, "entries from other sources must survive")
}

func TestClear(t *testing.T) {
	c := newTestCache(t)
	key := Key("a.psr", []byte("x"))
	require.NoError(t, c.Put(key, "a.psr", []byte("out")))
	require.NoError(t, c.Clear())
	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.EqualValues(t, 0, c.GetStats().TotalSize)
}

func TestIndexSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	key := Key("a.psr", []byte("x"))

	c, err := New(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, c.Put(key, "a.psr", []byte("persisted")))

	reopened, err := New(Config{Dir: dir})
	require.NoError(t, err)
	data, ok := reopened.Get(key)
	require.True(t, ok)
	assert.Equal(t, "persisted", string(data))
}

func TestCorruptIndexStartsFresh(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0644))

	c, err := New(Config{Dir: dir})
	require.NoError(t, err)
	_, ok := c.Get(Key("a.psr", []byte("x")))
	assert.False(t, ok)
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	c, err := New(Config{Dir: t.TempDir(), MaxAge: time.Nanosecond})
	require.NoError(t, err)
	key := Key("a.psr", []byte("x"))
	require.NoError(t, c.Put(key, "a.psr", []byte("out")))

	time.Sleep(2 * time.Millisecond)
	_, ok := c.Get(key)
	assert.False(t, ok, "entries past MaxAge must not be served")
}

func TestLRUEviction(t *testing.T) {
	c, err := New(Config{Dir: t.TempDir(), MaxSize: 10})
	require.NoError(t, err)

	oldKey := Key("old.psr", []byte("1"))
	require.NoError(t, c.Put(oldKey, "old.psr", []byte("12345")))
	require.NoError(t, c.Put(Key("new.psr", []byte("2")), "new.psr", []byte("67890")))

	// a third entry pushes past MaxSize and evicts the least recently used
	require.NoError(t, c.Put(Key("third.psr", []byte("3")), "third.psr", []byte("abcde")))

	_, ok := c.Get(oldKey)
	assert.False(t, ok, "the oldest entry must be evicted first")
	assert.GreaterOrEqual(t, c.GetStats().Evictions, int64(1))
}

func TestMissingCacheFileIsAMiss(t *testing.T) {
	c := newTestCache(t)
	key := Key("a.psr", []byte("x"))
	require.NoError(t, c.Put(key, "a.psr", []byte("out")))

	entryPath := ""
	c.mu.RLock()
	entryPath = c.index.Entries[key].Path
	c.mu.RUnlock()
	require.NoError(t, os.Remove(entryPath))

	_, ok := c.Get(key)
	assert.False(t, ok, "a deleted backing file must read as a miss")
}
