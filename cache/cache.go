// Copyright 2016-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides read-through caching of collection records.
// The cache wraps some other openEO back-end.  Most methods simply
// pass through to the underlying back-end, but fetching a single
// collection by id returns a cached record when one is available.
//
// Collection records are the one thing this interface serves that is
// worth caching.  Every versioned metadata request reads them, they
// can be large once their documents are filled in, and they change
// only when an operator loads a new catalog.  Nothing else is safe to
// cache: jobs and services change status out from under the API, and
// results are streamed straight through.
//
// Object identity
//
// Cached records use id identity.  If a record is rewritten through
// another channel, say a second server sharing the same database,
// this cache keeps returning the older record until it is evicted.
// Writes made through this back-end invalidate the cached record, so
// a single server always reads its own writes.
//
// Caveats
//
// The executor-facing queue interface is not forwarded.  A job runner
// wants none of this caching, so point it at the wrapped back-end
// directly.
//
// Listing the whole catalog passes through uncached.  Reconciling a
// full listing with the cache would mostly thrash it, and the listing
// is served from a single query anyway.
package cache

import (
	"github.com/diffeo/go-openeo/openeo"
)

// Size is the number of collection records New keeps.
const Size = 32

type cache struct {
	backend openeo.Backend
	catalog openeo.CollectionCatalog
}

// New creates a new caching back-end, wrapping some other back-end,
// holding the default number of collection records.
func New(backend openeo.Backend) openeo.Backend {
	return NewWithSize(backend, Size)
}

// NewWithSize creates a new caching back-end holding at most size
// collection records.
func NewWithSize(backend openeo.Backend, size int) openeo.Backend {
	c := &cache{backend: backend}
	catalog := cachedCatalog{
		inner: backend.Collections(),
		lru:   newLRU(size),
	}
	// Advertise openeo.CollectionWriter only if the wrapped
	// catalog actually has it
	if writer, ok := catalog.inner.(openeo.CollectionWriter); ok {
		c.catalog = &writeCatalog{cachedCatalog: catalog, writer: writer}
	} else {
		c.catalog = &catalog
	}
	return c
}

func (c *cache) Collections() openeo.CollectionCatalog {
	return c.catalog
}

func (c *cache) Jobs() openeo.BatchJobs {
	return c.backend.Jobs()
}

func (c *cache) Services() openeo.SecondaryServices {
	return c.backend.Services()
}

func (c *cache) Auth() openeo.Authenticator {
	return c.backend.Auth()
}

func (c *cache) FileFormats() openeo.FileFormats {
	return c.backend.FileFormats()
}

func (c *cache) Evaluate(user string, process map[string]interface{}) (openeo.JobResult, error) {
	return c.backend.Evaluate(user, process)
}

func (c *cache) Summarize() ([]openeo.JobSummary, error) {
	return c.backend.Summarize()
}

func (c *cache) HealthCheck() string {
	return c.backend.HealthCheck()
}

// cachedCatalog serves single-record fetches from an LRU cache and
// passes everything else through.
type cachedCatalog struct {
	inner openeo.CollectionCatalog
	lru   *lru
}

func (cc *cachedCatalog) ListCollections() ([]openeo.Collection, error) {
	return cc.inner.ListCollections()
}

func (cc *cachedCatalog) GetCollection(id string) (openeo.Collection, error) {
	item, err := cc.lru.Get(id, func(key string) (interface{}, error) {
		coll, err := cc.inner.GetCollection(key)
		if err != nil {
			return nil, err
		}
		return coll, nil
	})
	if err != nil {
		return openeo.Collection{}, err
	}
	return item.(openeo.Collection), nil
}

// writeCatalog is a cachedCatalog over a catalog that can also be
// written.  It is a distinct type so that a cache over a read-only
// catalog does not falsely claim to be writable.
type writeCatalog struct {
	cachedCatalog
	writer openeo.CollectionWriter
}

func (wc *writeCatalog) PutCollection(coll openeo.Collection) error {
	err := wc.writer.PutCollection(coll)
	if err == nil {
		// Drop the cached record rather than updating it, so
		// the next read returns whatever canonical form the
		// back-end stores
		wc.lru.Remove(coll.ID)
	}
	return err
}
