// Package memory provides an in-process, in-memory implementation of
// an openEO back-end.  There is no persistence: collections, batch
// jobs, and secondary services live in process memory, prepopulated
// with a small fixture data set.  The entire system is behind a
// single global semaphore to protect against concurrent updates; in
// some cases this can limit performance in the name of correctness.
//
// This is mostly intended as a simple reference implementation of
// openeo.Backend that can be used for testing, including in-process
// testing of higher-level components.  It is generally tuned for
// correctness, not performance or scalability.  No process graph is
// ever actually evaluated: evaluations and runner-driven jobs
// produce a fixed TIFF-flavored artifact.
package memory

import (
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/diffeo/go-openeo/openeo"
)

// TestUser is the user the fixture job belongs to.  The fixture
// authenticator accepts any username whose password is the username
// with "123" appended, this one included.
const TestUser = "Mr.Test"

// These are the only external entry points to this package:

// New creates a new openeo.Backend that operates purely in memory.
func New() openeo.Backend {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new in-memory backend using an explicit time
// source.  Most application code should call New(), and use the
// default (real) time source; this entry point is intended for tests
// that need to inject a mock time source.
func NewWithClock(clk clock.Clock) openeo.Backend {
	b := &memBackend{clock: clk}
	b.catalog = newCatalog(b)
	b.jobs = newJobs(b)
	b.services = newServices(b)
	b.auth = newAuth(b)
	return b
}

// lockable is a common interface for objects that need to take the
// global lock on the backend state.
type lockable interface {
	// Backend returns a pointer to the backend object at the root
	// of this object tree.
	Backend() *memBackend
}

// globalLock locks the backend object at the root of the object
// tree.  Pair this with globalUnlock, as
//
//     globalLock(self)
//     defer globalUnlock(self)
func globalLock(b lockable) {
	b.Backend().sem.Lock()
}

// globalUnlock unlocks the backend object at the root of the object
// tree.
func globalUnlock(b lockable) {
	b.Backend().sem.Unlock()
}

// Backend wrapper type:

type memBackend struct {
	catalog  *memCatalog
	jobs     *memJobs
	services *memServices
	auth     *memAuth
	clock    clock.Clock
	sem      sync.Mutex
}

// openeo.Backend interface:

func (b *memBackend) Collections() openeo.CollectionCatalog {
	return b.catalog
}

func (b *memBackend) Jobs() openeo.BatchJobs {
	return b.jobs
}

func (b *memBackend) Services() openeo.SecondaryServices {
	return b.services
}

func (b *memBackend) Auth() openeo.Authenticator {
	return b.auth
}

func (b *memBackend) FileFormats() openeo.FileFormats {
	return openeo.FileFormats{
		Input: map[string]openeo.FileFormat{
			"GeoJSON": {GISDataTypes: []string{"vector"}},
		},
		Output: map[string]openeo.FileFormat{
			"GTiff": {Title: "GeoTiff", GISDataTypes: []string{"raster"}},
		},
	}
}

func (b *memBackend) Evaluate(user string, process map[string]interface{}) (openeo.JobResult, error) {
	if _, ok := process["process_graph"].(map[string]interface{}); !ok {
		return openeo.JobResult{}, openeo.ErrProcessGraphMissing
	}
	return fixtureResult(), nil
}

func (b *memBackend) Summarize() (result []openeo.JobSummary, err error) {
	globalLock(b)
	defer globalUnlock(b)

	counts := make(map[openeo.JobStatus]int)
	for _, mj := range b.jobs.jobs {
		counts[mj.job.Status]++
	}
	// Every status gets a row, zero or not, so that pollers see
	// counts drop back to zero.
	for status := openeo.JobCreated; status <= openeo.JobError; status++ {
		result = append(result, openeo.JobSummary{
			Status: status,
			Count:  counts[status],
		})
	}
	return result, nil
}

func (b *memBackend) HealthCheck() string {
	return "OK"
}

// memory.lockable interface:

func (b *memBackend) Backend() *memBackend {
	return b
}

// fixtureProcess returns the trivial process document the job and
// service fixtures carry.
func fixtureProcess() map[string]interface{} {
	return map[string]interface{}{
		"process_graph": map[string]interface{}{
			"foo": map[string]interface{}{
				"process_id": "foo",
				"arguments":  map[string]interface{}{},
			},
		},
	}
}

// fixtureResult returns the artifact every synchronous evaluation
// produces.  The payload opens with the little-endian TIFF magic so
// format sniffers are satisfied.
func fixtureResult() openeo.JobResult {
	return openeo.JobResult{
		Name:      "output.tiff",
		MediaType: openeo.GTiffMediaType,
		Content:   []byte("II*\x00 in-memory result"),
	}
}
