// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains a REST skeleton framework.
//
// The bulk of this is dealing with HTTP content type negotiation, and
// providing a standard way to deal with input and output values.  The
// openEO protocol is JSON-only, so the negotiation collapses to
// accepting the JSON spellings, but keeping the RFC 7231 path means a
// client with a strict Accept: header gets a proper 406 rather than a
// surprise.

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/diffeo/go-openeo/restdata"
	"github.com/sirupsen/logrus"
)

var typeMap = map[string]string{
	"text/json":            restdata.JSONMediaType,
	restdata.JSONMediaType: restdata.JSONMediaType,
}

// errBadAccept is returned from negotiateResponse() if the Accept:
// header is malformed (and no more specific error applies).
var errBadAccept = errors.New("Invalid Accept: header")

// errNotAcceptable is returned from negotiateResponse() if the Accept:
// header does not mention any media types we can actually return.
type errNotAcceptable struct{}

func (e errNotAcceptable) Error() string {
	return "No acceptable representation for response"
}

func (e errNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// errNotImplemented is returned from an arbitrary handler function if
// the actual function is not implemented.
type errNotImplemented struct {
	Text string
}

func (e errNotImplemented) Error() string {
	if e.Text == "" {
		return "Not implemented"
	}
	return e.Text
}

func (e errNotImplemented) HTTPStatus() int {
	return http.StatusNotImplemented
}

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// responseCreated is returned as a value response from handler
// functions that want to indicate that a new resource was created.
type responseCreated struct {
	// Location holds the canonical URL to the newly created resource.
	Location string

	// Identifier, if non-empty, is sent back in the
	// OpenEO-Identifier response header.
	Identifier string

	// Body contains the object sent in the body of the response.
	Body interface{}
}

// responseAccepted is returned as a value response from handler
// functions whose work has been queued but not done.  It maps to a
// bare 202 Accepted.
type responseAccepted struct{}

// responseRedirect is returned as a value response from handler
// functions that send the client elsewhere, such as the OpenID
// Connect discovery endpoint.
type responseRedirect struct {
	Location string
}

// responseRaw is returned as a value response from handler functions
// whose payload is not a JSON document, batch job result files in
// particular.  It is written verbatim with its own media type.
type responseRaw struct {
	MediaType string
	Content   []byte
}

type resourceHandler struct {
	// Representation is an object representing this resource.
	// A copy of this object will be passed to handler functions.
	Representation interface{}

	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*context, error)

	// Log receives a report of any panic in a handler function.
	Log *logrus.Logger

	// Raw indicates that successful responses bring their own
	// media type, so no content negotiation happens.  Error
	// responses still use the JSON envelope.
	Raw bool

	// Get, if non-nil, returns a representation of the object.
	// Its return type should be the same type as Representation,
	// though this is not enforced.
	Get func(*context) (interface{}, error)

	// Patch, if non-nil, applies a partial update to the object.
	// The interface parameter is guaranteed to be the same type
	// as Representation.  The return can be any useful return
	// value.
	Patch func(*context, interface{}) (interface{}, error)

	// Post, if non-nil, takes some arbitrary action.  The
	// interface parameter is guaranteed to be the same type as
	// Representation, though in this case this is not necessarily
	// a representation of the resource.  The return can be any
	// useful return value, including responseCreated.
	Post func(*context, interface{}) (interface{}, error)

	// Delete, if non-nil, deletes or cancels the object.  The
	// return can be any useful return value.
	Delete func(*context) (interface{}, error)
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx          *context
		in, out      interface{}
		err          error
		status       int
		responseType string
	)

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			h.Log.WithFields(logrus.Fields{
				"method": req.Method,
				"url":    req.URL.String(),
				"error":  recovered,
			}).Error("Panic in request handler")
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered)
			resp.Header().Set("Content-Type", restdata.JSONMediaType)
			resp.WriteHeader(http.StatusInternalServerError)
			_ = restdata.Encode(resp, response)
		}
	}()

	// Start by trying to come up with a response type, even before
	// trying to parse the input.  This determines what format an
	// error message could be sent back as.
	//
	// Errors here by default are in the header setup.
	status = http.StatusBadRequest
	if h.Raw {
		responseType = restdata.JSONMediaType
	} else {
		responseType, err = negotiateResponse(req)
		if err != nil {
			// Gotta pick something
			responseType = restdata.JSONMediaType
		}
	}

	// Get bits from URL parameters
	if err == nil {
		ctx, err = h.Context(req)
	}

	// Read the JSON body, if it's there.  Several POST routes,
	// starting a batch job for one, legitimately have no body at
	// all, so an empty body never reaches the decoder.
	if err == nil && (req.Method == "POST" || req.Method == "PATCH") && req.ContentLength != 0 {
		// Make a new object of the same type as h.Representation
		in = reflect.Zero(reflect.TypeOf(h.Representation)).Interface()

		// Then decode the message body into that object
		contentType := req.Header.Get("Content-Type")
		err = restdata.Decode(contentType, req.Body, &in)
	}

	// Actually call the handler method
	if err == nil {
		// We will return this if the method is unexpected or
		// we don't have a handler for it
		err = errMethodNotAllowed{Method: req.Method}
		// If anything else goes wrong here, it's an error in
		// client code
		status = http.StatusInternalServerError
		switch req.Method {
		case "GET", "HEAD":
			if h.Get != nil {
				out, err = h.Get(ctx)
			}
		case "PATCH":
			if h.Patch != nil {
				out, err = h.Patch(ctx, in)
			}
		case "POST":
			if h.Post != nil {
				out, err = h.Post(ctx, in)
			}
		case "DELETE":
			if h.Delete != nil {
				out, err = h.Delete(ctx)
			}
		}
	}

	// Fix up the final result based on what we know.
	if err != nil {
		// Pick a better status code if we know of one
		if known := restdata.HTTPStatus(err); known != http.StatusInternalServerError {
			status = known
		}
		response := restdata.ErrorResponse{}
		response.FromError(err)
		out = response
	} else if out == nil {
		status = http.StatusNoContent
	} else if _, isAccepted := out.(responseAccepted); isAccepted {
		status = http.StatusAccepted
		out = nil
	} else if created, isCreated := out.(responseCreated); isCreated {
		status = http.StatusCreated
		if created.Location != "" {
			resp.Header().Set("Location", created.Location)
		}
		if created.Identifier != "" {
			resp.Header().Set("OpenEO-Identifier", created.Identifier)
		}
		if req.Method == "HEAD" {
			out = nil
		} else {
			out = created.Body
		}
	} else if redirect, isRedirect := out.(responseRedirect); isRedirect {
		status = http.StatusFound
		resp.Header().Set("Location", redirect.Location)
		out = nil
	} else {
		status = http.StatusOK
		if req.Method == "HEAD" {
			out = nil
		}
	}

	// Raw content bypasses the JSON encoder entirely.
	if raw, isRaw := out.(responseRaw); isRaw {
		resp.Header().Set("Content-Type", raw.MediaType)
		resp.WriteHeader(status)
		if req.Method != "HEAD" {
			_, _ = resp.Write(raw.Content)
		}
		return
	}

	// Actually send the response.  It is possible for the encoder
	// to fail, but by the point that happens we've already written
	// an HTTP status line, so there is nothing useful left to do
	// with the error.
	if out != nil {
		resp.Header().Set("Content-Type", responseType)
	}
	resp.WriteHeader(status)
	if out != nil {
		_ = restdata.Encode(resp, out)
	}
}

// negotiateResponse returns a supported MIME type for the response
// body, following the path laid out in RFC 7231 section 5.3.
func negotiateResponse(req *http.Request) (string, error) {
	accept := req.Header.Get("Accept")
	if accept == "" {
		accept = "*/*"
	}
	bestType := ""
	bestQ := 0.0
	mediaRanges := strings.Split(accept, ",")
	for _, mediaRange := range mediaRanges {
		mediaRange = strings.TrimSpace(mediaRange)
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return "", err
		}

		// What is the "q" ("quality") parameter for this type?
		// If it is less than the best known so far, skip it
		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil {
				return "", err
			}
			if q < 0.0 || q > 1.0 {
				return "", errBadAccept
			}
		}
		if q < bestQ {
			continue
		}

		// This is acceptable if it's listed in the type
		// map; or it's one of a couple of specific wildcards.
		// Also need to handle wildcard precedence.  So:
		if mediaType == "*/*" {
			// Doesn't override anything.
			if q > bestQ {
				bestType = mediaType
				bestQ = q
			}
		} else if mediaType == "text/*" || mediaType == "application/*" {
			// Only overrides "*/*".
			if q > bestQ || bestType == "*/*" {
				bestType = mediaType
				bestQ = q
			}
		} else if _, knownType := typeMap[mediaType]; knownType {
			// Overrides any wildcard.  We want the first one
			// at a given q to win.
			if q > bestQ || bestType == "*/*" || bestType == "text/*" || bestType == "application/*" {
				bestType = mediaType
				bestQ = q
			}
		}
		// Otherwise we don't recognize this type at all, so
		// just drop it.
		//
		// The RFC endorses honoring type parameters as being
		// "more specific" but we don't really deal with that.
	}
	// If this failed to win, return an error
	if bestQ == 0.0 {
		return "", errNotAcceptable{}
	}
	switch bestType {
	case "*/*":
		return restdata.JSONMediaType, nil
	case "application/*":
		return restdata.JSONMediaType, nil
	case "text/*":
		return "text/json", nil
	default:
		return bestType, nil
	}
}
