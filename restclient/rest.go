// Copyright 2015-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/jtacoma/uritemplates"
	"github.com/ugorji/go/codec"

	"github.com/diffeo/go-openeo/restdata"
)

// session carries what every request needs: the HTTP client to send
// it on, and the Authorization header once one is established.  All
// resources derived from one Client share a single session, so a
// login is visible to job and service handles created before it.
type session struct {
	httpClient    *http.Client
	authorization string
}

func newSession() *session {
	return &session{httpClient: http.DefaultClient}
}

// resource is any object that has a URL and a representation.
type resource struct {
	URL     *url.URL
	session *session
}

func (r *resource) Template(template string, vars map[string]interface{}) (*url.URL, error) {
	// Build the template object
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}

	// Expand the template to produce a string
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, err
	}

	// Return the parsed URL of the result, relative to ourselves
	return r.URL.Parse(expanded)
}

// Do performs some HTTP action.  If in is non-nil, the request data is
// serialized and sent as the body of, for instance, a POST request.
// If out is non-nil, the response data (if any) is deserialized into
// this object, which must be of pointer type.
func (r *resource) Do(method string, url *url.URL, in, out interface{}) (err error) {
	json := &codec.JsonHandle{}

	// Set up the body as serialized JSON, if there is one
	var body io.Reader
	if in != nil {
		reader, writer := io.Pipe()
		encoder := codec.NewEncoder(writer, json)
		finished := make(chan error)
		go func() {
			err := encoder.Encode(in)
			err = firstError(err, writer.Close())
			finished <- err
		}()
		defer func() {
			err = firstError(err, <-finished)
		}()
		body = reader
	}

	// Create the request and set headers
	req, err := http.NewRequest(method, url.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", restdata.JSONMediaType)
	}
	if out != nil {
		req.Header.Set("Accept", restdata.JSONMediaType)
	}
	if r.session.authorization != "" {
		req.Header.Set("Authorization", r.session.authorization)
	}

	// Actually do the request
	resp, err := r.session.httpClient.Do(req)
	if err != nil {
		return err
	}

	// If the response included a body, clean up afterwards
	if resp.Body != nil {
		defer func() {
			err = firstError(err, resp.Body.Close())
		}()
	}

	// Check the response code
	if err = checkHTTPStatus(resp); err != nil {
		return err
	}

	// If there is both a body and a requested output, decode it
	if resp.Body != nil && out != nil && resp.StatusCode != http.StatusNoContent {
		contentType := resp.Header.Get("Content-Type")
		err = restdata.Decode(contentType, resp.Body, out)
	}

	return err // may be nil
}

// Create submits data to a collection URL and returns the identity
// the server assigned to the new resource, from the OpenEO-Identifier
// and Location response headers.
func (r *resource) Create(u *url.URL, in interface{}) (id string, location *url.URL, err error) {
	json := &codec.JsonHandle{}

	reader, writer := io.Pipe()
	encoder := codec.NewEncoder(writer, json)
	finished := make(chan error)
	go func() {
		err := encoder.Encode(in)
		err = firstError(err, writer.Close())
		finished <- err
	}()
	defer func() {
		err = firstError(err, <-finished)
	}()

	req, err := http.NewRequest("POST", u.String(), reader)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", restdata.JSONMediaType)
	if r.session.authorization != "" {
		req.Header.Set("Authorization", r.session.authorization)
	}

	resp, err := r.session.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	if resp.Body != nil {
		defer func() {
			err = firstError(err, resp.Body.Close())
		}()
	}
	if err = checkHTTPStatus(resp); err != nil {
		return "", nil, err
	}

	id = resp.Header.Get("OpenEO-Identifier")
	if loc := resp.Header.Get("Location"); loc != "" {
		location, err = u.Parse(loc)
		if err != nil {
			return "", nil, err
		}
	}
	return id, location, nil
}

// raw performs an HTTP action whose successful response is not a JSON
// document: result downloads and synchronous processing.  Error
// responses still arrive in the JSON envelope, which checkHTTPStatus
// unpacks.
func (r *resource) raw(method string, u *url.URL, in interface{}) (content []byte, mediaType string, err error) {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err = restdata.Encode(&buf, in); err != nil {
			return nil, "", err
		}
		body = &buf
	}

	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, "", err
	}
	if in != nil {
		req.Header.Set("Content-Type", restdata.JSONMediaType)
	}
	if r.session.authorization != "" {
		req.Header.Set("Authorization", r.session.authorization)
	}

	resp, err := r.session.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()
	if err = checkHTTPStatus(resp); err != nil {
		return nil, "", err
	}

	content, err = ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return content, resp.Header.Get("Content-Type"), nil
}

// Get retrieves the resource from its own URL.  The result is stored
// in out, which must be of pointer type.
func (r *resource) Get(out interface{}) (err error) {
	return r.Do("GET", r.URL, nil, out)
}

// GetFrom retrieves a resource from some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.  The result is stored in out,
// which must be of pointer type.
func (r *resource) GetFrom(template string, vars map[string]interface{}, out interface{}) (err error) {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do("GET", url, nil, out)
	}
	return err
}

// PostTo submits data to a service at some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.  The server response is
// stored in out, which must be of pointer type.
func (r *resource) PostTo(template string, vars map[string]interface{}, in, out interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do("POST", url, in, out)
	}
	return err
}

// PatchTo applies a partial update to a resource at some other URL.
func (r *resource) PatchTo(template string, vars map[string]interface{}, in, out interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do("PATCH", url, in, out)
	}
	return err
}

// Delete deletes the resource at its own URL.
func (r *resource) Delete() (err error) {
	return r.Do("DELETE", r.URL, nil, nil)
}

// DeleteAt deletes the resource at some other URL.  template is
// interpreted as a URI template, modified by vars, and the result
// taken relative to the resource's URL.
func (r *resource) DeleteAt(template string, vars map[string]interface{}) error {
	url, err := r.Template(template, vars)
	if err == nil {
		err = r.Do("DELETE", url, nil, nil)
	}
	return err
}

// ErrorHTTP is a catch-all error for non-successes returned from the
// REST endpoint.
type ErrorHTTP struct {
	// Response holds a pointer to the failing HTTP response.
	Response *http.Response

	// Body holds the contents of the message body, presumed to
	// be text.
	Body string
}

func (e ErrorHTTP) Error() string {
	return e.Response.Status
}

// checkHTTPStatus examines an HTTP response and returns an error if
// it is not successful.  Responses carrying the protocol's JSON error
// envelope are translated back into the matching openeo error.
func checkHTTPStatus(resp *http.Response) error {
	if len(resp.Status) > 0 && (resp.Status[0] == '2' || resp.Status[0] == '3') {
		return nil
	}

	// Always collect the entire body; we will need it as a fallback
	// and can only parse it once.
	var body []byte
	var err error
	if resp.Body != nil {
		body, err = ioutil.ReadAll(resp.Body)
		if err != nil {
			return err
		}
	}

	// Take a shot at decoding it as a better error
	var errResp restdata.ErrorResponse
	contentType := resp.Header.Get("Content-Type")
	err2 := restdata.Decode(contentType, bytes.NewReader(body), &errResp)
	if err2 == nil && errResp.Code != "" {
		// Given that we decoded that successfully, return the
		// server-provided error
		return errResp.ToError()
	}

	return ErrorHTTP{Response: resp, Body: string(body)}
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
