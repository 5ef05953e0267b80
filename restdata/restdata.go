// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines common data structures shared between the
// restserver and restclient packages.  JSON encodings of these are
// passed across the wire as plain application/json.
//
// Version-Dependent Rendering
//
// The openEO protocol exists in two generations, and one server
// instance speaks both.  A client announces the generation it wants
// through the version component of the request path; everything
// served below that component is rendered in that generation's
// shape.  The structs in this package describe the parts of the wire
// format that are the same in both generations.  Entities whose shape
// changes between generations (collections, batch jobs, secondary
// services) travel as a free-form Document instead, produced from the
// backend's canonical records by a Normalizer.
//
// The canonical record shapes live in the openeo package; nothing
// here performs I/O or talks to a backend.
//
// Timestamps
//
// Timestamps, when they appear, are represented in JSON as RFC 3339
// UTC strings with whole-second precision, "2012-03-04T05:06:07Z".  A
// timestamp with no value is omitted from the wire object entirely,
// never rendered as a JSON null: clients test for the presence of
// these keys.
//
// HTTP Considerations
//
// Each versioned API tree serves the same handlers; only the
// capabilities document's endpoint listing changes between versions.
// Resource references support GET, creations POST, updates PATCH, and
// removals DELETE.  Any resource that supports GET also supports
// HEAD.
//
// Errors
//
// Errors are returned as encodings of the ErrorResponse type,
// accompanied by a failing HTTP status code.  The Code field carries
// a stable machine-readable error code.  ErrorResponse can round-trip
// all of the openeo package's errors but returns most other errors as
// plain strings under the "Internal" code.
//
// If Go server code panics, this should be captured and returned as
// an ErrorResponse with error code "Internal".  The stack trace is
// kept server-side and never put on the wire.
package restdata

import (
	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
)

// JSONMediaType is the MIME type of every request and response body
// in this representation.
const JSONMediaType = "application/json"

// Document is one version-shaped wire rendering of an entity.  The
// key set depends on the entity family, the protocol generation, and
// on whether a full or summary rendering was asked for; see
// Normalizer.
type Document map[string]interface{}

// Discovery is returned by the well-known discovery path.  It lists
// every advertised version of the API together with the URL serving
// it.
type Discovery struct {
	Versions []DiscoveryVersion `json:"versions"`
}

// DiscoveryVersion is one row of a Discovery document.
type DiscoveryVersion struct {
	// URL is the absolute base URL of the tree serving this
	// version.
	URL string `json:"url"`

	// APIVersion is the canonical version served there.  Several
	// rows may carry the same canonical version, since alias path
	// components are advertised alongside the versions they
	// resolve to.
	APIVersion string `json:"api_version"`

	// Production reports whether this version is production-ready.
	Production bool `json:"production"`
}

// Capabilities is returned by the root path of a versioned API tree.
type Capabilities struct {
	// APIVersion is the canonical protocol version this tree
	// speaks.  It may differ from the version component of the
	// request path when that component is an alias.
	APIVersion string `json:"api_version"`

	// BackendVersion identifies the backend software release.
	BackendVersion string `json:"backend_version"`

	// StacVersion is the STAC version of the catalog metadata.
	StacVersion string `json:"stac_version"`

	// ID identifies this service instance.  It is derived from
	// the title and the canonical version.
	ID string `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Production mirrors the resolved version's production flag.
	Production bool `json:"production"`

	// Endpoints lists the routes this version serves, merged by
	// path.
	Endpoints []endpoint.Entry `json:"endpoints"`

	// Billing describes the billing setup, if any.
	Billing *Billing `json:"billing,omitempty"`
}

// Billing is the billing section of a Capabilities document.
type Billing struct {
	// Currency is an ISO 4217 currency code.
	Currency string `json:"currency"`

	Plans []BillingPlan `json:"plans"`
}

// BillingPlan describes one plan clients can run work under.
type BillingPlan struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Paid        bool   `json:"paid"`
}

// Health is returned by the health-check path.
type Health struct {
	Health string `json:"health"`
}

// AuthResponse is returned by a successful basic-authentication
// exchange.  UserID is only present in protocol generations before
// 1.0.0.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id,omitempty"`
}

// UserInfo describes the authenticated user.
type UserInfo struct {
	UserID string                 `json:"user_id"`
	Info   map[string]interface{} `json:"info,omitempty"`
}

// CollectionList is returned by the collection listing path.  The
// embedded documents are summary renderings.
type CollectionList struct {
	Collections []Document    `json:"collections"`
	Links       []openeo.Link `json:"links"`
}

// ProcessList is returned by the process listing path.
type ProcessList struct {
	Processes []map[string]interface{} `json:"processes"`
	Links     []openeo.Link            `json:"links"`
}

// JobList is returned by the batch job listing path.  The embedded
// documents are summary renderings.
type JobList struct {
	Jobs  []Document    `json:"jobs"`
	Links []openeo.Link `json:"links"`
}

// ServiceList is returned by the secondary service listing path.
type ServiceList struct {
	Services []Document    `json:"services"`
	Links    []openeo.Link `json:"links"`
}

// Logs is returned by the batch job log path.
type Logs struct {
	Logs  []openeo.LogEntry `json:"logs"`
	Links []openeo.Link     `json:"links"`
}

// Asset points at one downloadable result artifact.
type Asset struct {
	Href string `json:"href"`

	// Type is the artifact's media type, when known.
	Type string `json:"type,omitempty"`
}

// Results is the 1.0.0-and-later rendering of a finished job's
// results, keyed by artifact name.
type Results struct {
	Assets map[string]Asset `json:"assets"`
}

// ResultsPre1 is the pre-1.0 rendering of a finished job's results, a
// flat list of download links.
type ResultsPre1 struct {
	Links []openeo.Link `json:"links"`
}
