package ossfuzz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureCached(t *testing.T) {
	te := newTestEnv(t, []string{"coverage"})
	te.addCacheScript("libxml2")

	cached := te.b.EnsureCached("libxml2")
	assert.Equal(t, []string{"coverage"}, cached)

	ref := te.b.env.cacheImageRef("libxml2", "coverage")
	assert.Equal(t, []string{ref}, te.reg.pulls)
	assert.Equal(t, []string{"libxml2/coverage"}, te.tc.fuzzerBuilds)
	assert.Equal(t, []string{ref}, te.reg.commits)
	assert.Equal(
		t, []string{"gcr.io.oss-fuzz.libxml2_cache"}, te.reg.removes,
	)
	assert.True(t, te.b.IsImageCached("libxml2", "coverage"))
}

func TestEnsureCached_noBuildScript(t *testing.T) {
	te := newTestEnv(t, []string{"coverage"})

	cached := te.b.EnsureCached("libxml2")
	assert.Nil(t, cached)
	assert.Empty(t, te.reg.pulls)
	assert.Empty(t, te.tc.fuzzerBuilds)
}

func TestEnsureCached_alreadyCached(t *testing.T) {
	te := newTestEnv(t, []string{"coverage"})
	te.addCacheScript("libxml2")
	te.reg.remote[te.b.env.cacheImageRef("libxml2", "coverage")] = true

	cached := te.b.EnsureCached("libxml2")
	assert.Equal(t, []string{"coverage"}, cached)
	assert.Empty(t, te.reg.pulls)
	assert.Empty(t, te.tc.fuzzerBuilds)
}

func TestEnsureCached_failureIsolation(t *testing.T) {
	te := newTestEnv(t, []string{"address", "coverage"})
	te.addCacheScript("libxml2")
	te.tc.failSanitizers = map[string]bool{"address": true}

	cached := te.b.EnsureCached("libxml2")
	assert.Equal(t, []string{"coverage"}, cached)

	// Both sanitizers got their build attempt.
	assert.Equal(
		t, []string{"libxml2/address", "libxml2/coverage"},
		te.tc.fuzzerBuilds,
	)
	assert.False(t, te.b.IsImageCached("libxml2", "address"))
	assert.True(t, te.b.IsImageCached("libxml2", "coverage"))
}

func TestEnsureCached_commitFailure(t *testing.T) {
	te := newTestEnv(t, []string{"coverage"})
	te.addCacheScript("libxml2")
	te.reg.failCommit = true

	cached := te.b.EnsureCached("libxml2")
	assert.Nil(t, cached)
	assert.False(t, te.b.IsImageCached("libxml2", "coverage"))
}

func TestPrepareCachedImages(t *testing.T) {
	te := newTestEnv(t, []string{"coverage"})
	te.addCacheScript("libxml2")
	te.addCacheScript("zlib")

	te.b.PrepareCachedImages([]*Benchmark{
		{ID: "zlib-1", Project: "zlib"},
		{ID: "libxml2-1", Project: "libxml2"},
		{ID: "libxml2-2", Project: "libxml2"},
	})

	// One build per project and sanitizer, projects deduplicated and in
	// sorted order.
	assert.Equal(
		t, []string{"libxml2/coverage", "zlib/coverage"}, te.tc.fuzzerBuilds,
	)
}

func TestIsImageCached(t *testing.T) {
	te := newTestEnv(t, nil)
	assert.False(t, te.b.IsImageCached("libxml2", "address"))

	te.reg.remote[te.b.env.cacheImageRef("libxml2", "address")] = true
	assert.True(t, te.b.IsImageCached("libxml2", "address"))
	assert.False(t, te.b.IsImageCached("libxml2", "coverage"))
}
