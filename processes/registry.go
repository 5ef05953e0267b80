// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package processes

import (
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-openeo/openeo"
)

// Registry holds the process specifications one protocol generation
// serves.  It is usually populated once at startup, but extension
// processes may be registered at any time; registration and querying
// are safe to run concurrently, and a reader never observes a
// half-registered spec.
type Registry struct {
	// Log receives diagnostics.  If nil, the standard logger is
	// used.
	Log *logrus.Logger

	mutex      sync.RWMutex
	specs      map[string]Spec
	deprecated map[string]string
}

// NewRegistry creates an empty process registry.
func NewRegistry(log *logrus.Logger) *Registry {
	return &Registry{
		Log:        log,
		specs:      make(map[string]Spec),
		deprecated: make(map[string]string),
	}
}

func (r *Registry) log() *logrus.Logger {
	if r.Log != nil {
		return r.Log
	}
	return logrus.StandardLogger()
}

// Register adds a process specification.  Specs without a declared
// return value are rejected with openeo.ErrIncompleteProcessSpec so
// that authoring bugs surface at startup rather than on the first
// lookup.  Registering an id a second time replaces the earlier spec,
// and an active registration always displaces a deprecated alias of
// the same name.
func (r *Registry) Register(spec Spec) error {
	if spec.ID == "" {
		return openeo.ErrMissingIdentity{Kind: "process"}
	}
	if spec.Returns == nil {
		return openeo.ErrIncompleteProcessSpec{ID: spec.ID}
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, wasDeprecated := r.deprecated[spec.ID]; wasDeprecated {
		r.log().WithField("process", spec.ID).
			Warn("Active process registration displaces deprecated alias")
		delete(r.deprecated, spec.ID)
	}
	r.specs[spec.ID] = spec
	return nil
}

// RegisterSpec builds and registers in one step, for chaining off
// NewSpec().
func (r *Registry) RegisterSpec(b *SpecBuilder) error {
	spec, err := b.Spec()
	if err == nil {
		err = r.Register(spec)
	}
	return err
}

// RegisterDeprecated records alias as a deprecated name for the
// process replaces.  Deprecated aliases stay callable at the
// execution layer but never appear in listings, and looking one up
// fails the same way an unknown id does.  If the alias is already
// registered as an active process, the active registration wins and
// the deprecation is dropped with a warning.
func (r *Registry) RegisterDeprecated(alias, replaces string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, active := r.specs[alias]; active {
		r.log().WithFields(logrus.Fields{
			"process":  alias,
			"replaces": replaces,
		}).Warn("Ignoring deprecation of an active process")
		return
	}
	r.deprecated[alias] = replaces
}

// Deprecated reports whether id is a deprecated alias, and if so the
// id of the process that replaces it.
func (r *Registry) Deprecated(id string) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	replaces, ok := r.deprecated[id]
	return replaces, ok
}

func (r *Registry) render(spec Spec, v openeo.Version) (map[string]interface{}, error) {
	if len(spec.Parameters) == 0 {
		r.log().WithField("process", spec.ID).
			Warn("Rendering process spec with no parameters")
	}
	return spec.Wire(v)
}

// Lookup returns the wire rendering of one process spec.  Unknown ids
// and deprecated aliases both fail with openeo.ErrProcessUnsupported.
func (r *Registry) Lookup(id string, v openeo.Version) (map[string]interface{}, error) {
	r.mutex.RLock()
	spec, ok := r.specs[id]
	r.mutex.RUnlock()
	if !ok {
		return nil, openeo.ErrProcessUnsupported{ID: id}
	}
	return r.render(spec, v)
}

// Search returns the wire renderings of every active spec whose id
// contains substring, sorted by id.  The empty substring matches
// everything.
func (r *Registry) Search(substring string, v openeo.Version) ([]map[string]interface{}, error) {
	r.mutex.RLock()
	specs := make([]Spec, 0, len(r.specs))
	for id, spec := range r.specs {
		if strings.Contains(id, substring) {
			specs = append(specs, spec)
		}
	}
	r.mutex.RUnlock()
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })

	docs := make([]map[string]interface{}, 0, len(specs))
	for _, spec := range specs {
		doc, err := r.render(spec, v)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// IDs returns the sorted ids of every active spec.
func (r *Registry) IDs() []string {
	r.mutex.RLock()
	ids := make([]string, 0, len(r.specs))
	for id := range r.specs {
		ids = append(ids, id)
	}
	r.mutex.RUnlock()
	sort.Strings(ids)
	return ids
}

// Registries pairs the process registries of the two protocol
// generations.  The sets differ: several processes were renamed or
// replaced outright in 1.0.0, so the two generations do not just
// reshape the same specs.
type Registries struct {
	PreV1 *Registry
	V1    *Registry
}

// ForVersion picks the registry serving a resolved version.
func (r Registries) ForVersion(v openeo.Version) *Registry {
	if v.AtLeast(openeo.V100) {
		return r.V1
	}
	return r.PreV1
}
