// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes an openeo.Backend as the openEO REST
// API.  The restclient package is a matching client.
//
// The wire representations are defined in the restdata package.
//
// Versioning
//
// Every API tree is mounted twice: once under a bare prefix, for
// example /openeo/collections, and once under a version token, for
// example /openeo/1.0.0/collections.  The bare tree serves the
// backend's default version.  A version token that does not resolve
// to a supported version produces an UnsupportedApiVersion error with
// HTTP status 501 for every path under it.  The well-known discovery
// document at /.well-known/openeo lists the supported trees.
//
// Authentication
//
// GET /credentials/basic performs HTTP Basic login and returns a
// bearer token.  Requests that act on a specific user's resources,
// batch jobs in particular, send that token in an Authorization:
// Bearer header.  Tokens prefixed with "basic//", as issued by 1.0
// series backends, are accepted at every version.
//
// MIME Types
//
// This interface understands MIME types as follows:
//
//     application/json
//     text/json
//
// JSON representation of this interface.  Batch job result files are
// served with their own stored media types.
//
// URL Scheme
//
// The following URLs are defined, each under both /openeo and
// /openeo/{version}:
//
//     /
//     /health
//     /capabilities
//     /output_formats
//     /file_formats
//     /udf_runtimes
//     /credentials/basic
//     /credentials/oidc
//     /me
//     /collections
//     /collections/{collection_id}
//     /processes
//     /processes/{process_id}
//     /result
//     /preview
//     /execute
//     /jobs
//     /jobs/{job_id}
//     /jobs/{job_id}/results
//     /jobs/{job_id}/results/{filename}
//     /jobs/{job_id}/logs
//     /jobs/{job_id}/subscription
//     /service_types
//     /services
//     /services/{service_id}
//
// and, at the server root:
//
//     /.well-known/openeo
package restserver
