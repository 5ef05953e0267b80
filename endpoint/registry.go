// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package endpoint tracks the routes the REST API exposes and decides
// which of them appear in a capability listing for a given protocol
// version.
//
// A Registry is populated once, alongside route binding at startup,
// and is read-only afterward.  Registration is explicit: whoever binds
// a route to the router also calls Add, so the capability document can
// never drift from the real route table.  Conflicting registrations
// are a startup bug and fail immediately rather than at request time.
package endpoint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diffeo/go-openeo/openeo"
)

// Endpoint describes one route exposed by the REST API.
type Endpoint struct {
	// Path is the route's path template relative to the versioned
	// API root.  Placeholders may use either "<id>" or "{id}"
	// syntax; listings always render the braced form.
	Path string

	// Methods lists the HTTP methods this registration adds to the
	// path.  Separate registrations for the same path merge in
	// listings.
	Methods []string

	// Hidden excludes the route from capability listings for every
	// version.  The route still dispatches.
	Hidden bool

	// If, when non-nil, restricts the listing to versions the
	// predicate accepts.  Like Hidden, this gates visibility only.
	If func(openeo.Version) bool
}

// Entry is one merged row of a capability listing.
type Entry struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

// ErrDuplicateEndpoint is returned from Registry.Add() when a (path,
// method) pair is registered twice.  This is always a programming
// error in route setup, and servers should treat it as fatal.
type ErrDuplicateEndpoint struct {
	Path   string
	Method string
}

func (err ErrDuplicateEndpoint) Error() string {
	return fmt.Sprintf("Endpoint %v %v registered twice", err.Method, err.Path)
}

// Registry is the endpoint table.  The zero value is empty and usable.
type Registry struct {
	endpoints []Endpoint
	seen      map[string]struct{}
}

// NewRegistry creates an empty endpoint registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add records one route registration.  The path is normalized to the
// braced placeholder form before duplicate checking, so "<id>" and
// "{id}" registrations collide as they should.
func (r *Registry) Add(e Endpoint) error {
	e.Path = WirePath(e.Path)
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	for _, method := range e.Methods {
		key := method + " " + e.Path
		if _, dup := r.seen[key]; dup {
			return ErrDuplicateEndpoint{Path: e.Path, Method: method}
		}
		r.seen[key] = struct{}{}
	}
	r.endpoints = append(r.endpoints, e)
	return nil
}

// Capabilities returns the visible endpoints for a resolved version,
// merged by path.  A route is visible if it is not hidden and its
// predicate (when present) accepts the version.  Paths keep the order
// in which they were first registered; the methods of each path are
// sorted.
func (r *Registry) Capabilities(v openeo.Version) []Entry {
	var order []string
	methods := make(map[string][]string)
	for _, e := range r.endpoints {
		if e.Hidden {
			continue
		}
		if e.If != nil && !e.If(v) {
			continue
		}
		if _, present := methods[e.Path]; !present {
			order = append(order, e.Path)
		}
		methods[e.Path] = append(methods[e.Path], e.Methods...)
	}
	entries := make([]Entry, 0, len(order))
	for _, path := range order {
		ms := methods[path]
		sort.Strings(ms)
		entries = append(entries, Entry{Path: path, Methods: ms})
	}
	return entries
}

var pathReplacer = strings.NewReplacer("<", "{", ">", "}")

// WirePath renders a path template with the braced placeholder syntax
// capability documents use, e.g. "/jobs/<job_id>" becomes
// "/jobs/{job_id}".  Paths already in braced form pass through
// unchanged.
func WirePath(path string) string {
	return pathReplacer.Replace(path)
}
