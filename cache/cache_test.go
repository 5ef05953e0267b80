// Copyright 2016-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/diffeo/go-openeo/cache"
	"github.com/diffeo/go-openeo/memory"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/openeo/backendtest"
)

// Suite runs the generic back-end tests over a cached in-memory
// back-end.  The cache should be invisible to them.
type Suite struct {
	backendtest.Suite
}

// SetupSuite does global setup for the test suite.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	s.Backend = cache.New(memory.NewWithClock(s.Clock))
	s.User = memory.TestUser
	s.Password = memory.TestUser + "123"
}

// TestBackend runs the Backend generic tests.
func TestBackend(t *testing.T) {
	suite.Run(t, &Suite{})
}

// readOnly hides a back-end's writable catalog.
type readOnly struct {
	openeo.Backend
}

func (ro readOnly) Collections() openeo.CollectionCatalog {
	return roCatalog{ro.Backend.Collections()}
}

type roCatalog struct {
	inner openeo.CollectionCatalog
}

func (rc roCatalog) ListCollections() ([]openeo.Collection, error) {
	return rc.inner.ListCollections()
}

func (rc roCatalog) GetCollection(id string) (openeo.Collection, error) {
	return rc.inner.GetCollection(id)
}

// putCollection writes a collection record straight to a back-end,
// bypassing any cache in front of it.
func putCollection(t *testing.T, backend openeo.Backend, coll openeo.Collection) {
	writer, ok := backend.Collections().(openeo.CollectionWriter)
	require.True(t, ok)
	require.NoError(t, writer.PutCollection(coll))
}

func TestCachedRead(t *testing.T) {
	inner := memory.New()
	cached := cache.New(inner)

	putCollection(t, inner, openeo.Collection{ID: "CACHE_TEST", Title: "one"})

	coll, err := cached.Collections().GetCollection("CACHE_TEST")
	if assert.NoError(t, err) {
		assert.Equal(t, "one", coll.Title)
	}

	// Rewrite the record behind the cache's back; the cache keeps
	// serving the old record
	putCollection(t, inner, openeo.Collection{ID: "CACHE_TEST", Title: "two"})

	coll, err = cached.Collections().GetCollection("CACHE_TEST")
	if assert.NoError(t, err) {
		assert.Equal(t, "one", coll.Title)
	}
}

func TestWriteInvalidates(t *testing.T) {
	inner := memory.New()
	cached := cache.New(inner)

	putCollection(t, inner, openeo.Collection{ID: "CACHE_TEST", Title: "one"})

	coll, err := cached.Collections().GetCollection("CACHE_TEST")
	if assert.NoError(t, err) {
		assert.Equal(t, "one", coll.Title)
	}

	// Writing through the cache drops the cached record
	putCollection(t, cached, openeo.Collection{ID: "CACHE_TEST", Title: "two"})

	coll, err = cached.Collections().GetCollection("CACHE_TEST")
	if assert.NoError(t, err) {
		assert.Equal(t, "two", coll.Title)
	}
}

func TestErrorNotCached(t *testing.T) {
	inner := memory.New()
	cached := cache.New(inner)

	_, err := cached.Collections().GetCollection("CACHE_TEST")
	assert.Equal(t, openeo.ErrNoSuchCollection{ID: "CACHE_TEST"}, err)

	// Once the record exists, the cache finds it; the earlier miss
	// was not cached
	putCollection(t, inner, openeo.Collection{ID: "CACHE_TEST", Title: "one"})

	coll, err := cached.Collections().GetCollection("CACHE_TEST")
	if assert.NoError(t, err) {
		assert.Equal(t, "one", coll.Title)
	}
}

func TestEviction(t *testing.T) {
	inner := memory.New()
	cached := cache.NewWithSize(inner, 1)

	putCollection(t, inner, openeo.Collection{ID: "FIRST", Title: "one"})

	coll, err := cached.Collections().GetCollection("FIRST")
	if assert.NoError(t, err) {
		assert.Equal(t, "one", coll.Title)
	}

	// Reading any other record pushes FIRST out of the
	// single-entry cache, so a rewrite becomes visible
	putCollection(t, inner, openeo.Collection{ID: "FIRST", Title: "two"})
	_, err = cached.Collections().GetCollection("S2_FOOBAR")
	assert.NoError(t, err)

	coll, err = cached.Collections().GetCollection("FIRST")
	if assert.NoError(t, err) {
		assert.Equal(t, "two", coll.Title)
	}
}

func TestReadOnlyCatalog(t *testing.T) {
	cached := cache.New(readOnly{memory.New()})

	// The cache must not claim write access its back-end lacks
	_, ok := cached.Collections().(openeo.CollectionWriter)
	assert.False(t, ok)

	// Reads still work, cached
	coll, err := cached.Collections().GetCollection("S2_FOOBAR")
	if assert.NoError(t, err) {
		assert.Equal(t, "S2_FOOBAR", coll.ID)
	}
}

func TestPassThrough(t *testing.T) {
	inner := memory.New()
	cached := cache.New(inner)

	assert.Equal(t, "OK", cached.HealthCheck())

	// Jobs are not cached at all: a job created through the cache
	// is immediately visible on the wrapped back-end
	job, err := cached.Jobs().CreateJob("alice", openeo.JobRequest{
		Process: map[string]interface{}{"process_graph": map[string]interface{}{}},
	})
	require.NoError(t, err)
	got, err := inner.Jobs().GetJob("alice", job.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, openeo.JobCreated, got.Status)
	}
}
