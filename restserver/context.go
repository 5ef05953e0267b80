// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
)

// context holds all of the information and objects that can be
// extracted from URL parameters and request headers.
type context struct {
	// Request is the request being served.
	Request *http.Request

	// Version is the resolved protocol version for this request.
	Version openeo.Version

	// Token is the version path component exactly as the client
	// sent it, or "" on the version-less tree.
	Token string

	// Job is the batch job named in the URL.  Looking it up
	// implies bearer authentication.
	Job openeo.BatchJob

	// Service is the secondary service named in the URL.
	Service openeo.Service

	// Collection is the collection named in the URL.
	Collection openeo.Collection

	// Process is the rendered spec of the process named in the URL.
	Process map[string]interface{}

	// Result is the batch job result artifact named in the URL.
	Result openeo.JobResult

	QueryParams url.Values

	// user is the authenticated user ID, when the Authorization
	// header carried a valid bearer token.
	user string

	// authErr records why bearer authentication failed, so that
	// routes that never ask for an identity can ignore a bad
	// header.
	authErr error
}

func (api *restAPI) Context(req *http.Request) (ctx *context, err error) {
	ctx = &context{Request: req}
	ctx.QueryParams = req.URL.Query()
	vars := mux.Vars(req)

	var present bool
	var token, jobID, serviceID, collectionID, processID, filename string

	if token, present = vars["version"]; present {
		ctx.Token = token
		ctx.Version, err = api.Config.Versions.Resolve(token)
	} else {
		ctx.Version = api.Config.Versions.Default()
	}

	// Authentication is deferred: a bad Authorization header only
	// matters once a route asks for the identity.
	if err == nil {
		ctx.user, ctx.authErr = api.bearerIdentity(req)
	}

	if jobID, present = vars["job_id"]; present && err == nil {
		var user string
		user, err = ctx.Identity()
		if err == nil {
			ctx.Job, err = api.Backend.Jobs().GetJob(user, jobID)
		}
	}

	if serviceID, present = vars["service_id"]; present && err == nil {
		ctx.Service, err = api.Backend.Services().GetService(serviceID)
	}

	if collectionID, present = vars["collection_id"]; present && err == nil {
		ctx.Collection, err = api.Backend.Collections().GetCollection(collectionID)
	}

	if processID, present = vars["process_id"]; present && err == nil {
		registry := api.Config.Processes.ForVersion(ctx.Version)
		ctx.Process, err = registry.Lookup(processID, ctx.Version)
	}

	if filename, present = vars["filename"]; present && err == nil {
		// The results themselves are only available once the job
		// has finished; the job_id lookup above has already
		// authenticated.
		var results []openeo.JobResult
		results, err = api.Backend.Jobs().Results(ctx.user, ctx.Job.ID)
		if err == nil {
			found := false
			for _, result := range results {
				if result.Name == filename {
					ctx.Result = result
					found = true
					break
				}
			}
			if !found {
				err = restdata.ErrNotFound{Err: fmt.Errorf("Job has no result file %q", filename)}
			}
		}
	}

	return
}

// Identity returns the authenticated user ID.  Routes that operate on
// user-owned resources call this; the error is openeo.ErrAuthRequired
// when no Authorization header was sent, or whatever made the header
// unusable otherwise.
func (ctx *context) Identity() (string, error) {
	if ctx.authErr != nil {
		return "", ctx.authErr
	}
	if ctx.user == "" {
		return "", openeo.ErrAuthRequired
	}
	return ctx.user, nil
}

// bearerIdentity resolves the Authorization header to a user ID.  An
// absent header resolves to the empty identity with no error; whether
// that is acceptable is the route's decision.
func (api *restAPI) bearerIdentity(req *http.Request) (string, error) {
	header := req.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", openeo.ErrAuthSchemeInvalid
	}
	// 1.0-generation clients send the token prefixed with the name
	// of the provider that issued it.  Accept that spelling at
	// every version.
	token := strings.TrimPrefix(parts[1], "basic//")
	return api.Backend.Auth().VerifyToken(token)
}

// basicCredentials extracts the username and password of an HTTP
// Basic Authorization header.  Unlike bearer tokens, an absent header
// here is an immediate error: the only route using this is the login
// route itself.
func basicCredentials(req *http.Request) (string, string, error) {
	header := req.Header.Get("Authorization")
	if header == "" {
		return "", "", openeo.ErrAuthRequired
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Basic") {
		return "", "", openeo.ErrAuthSchemeInvalid
	}
	username, password, ok := req.BasicAuth()
	if !ok {
		return "", "", openeo.ErrCredentialsInvalid
	}
	return username, password, nil
}

// versionToken returns the version path component that URLs built for
// this request should carry.  On the version-less tree that is the
// canonical spelling of the default version, so generated URLs always
// name the version they were served under.
func (ctx *context) versionToken() string {
	if ctx.Token != "" {
		return ctx.Token
	}
	return ctx.Version.String()
}
