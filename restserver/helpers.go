// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains various HTTP-related helpers.  I sort of suspect
// most of them belong in some sort of standard library I haven't
// immediately found.

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
)

type urlBuilder struct {
	Router *mux.Router
	Params []string
	Error  error
}

func buildURLs(router *mux.Router, params ...string) *urlBuilder {
	return &urlBuilder{Router: router, Params: params}
}

func (u *urlBuilder) Route(route string) *mux.Route {
	if u.Error != nil {
		return nil
	}
	r := u.Router.Get(route)
	if r == nil {
		u.Error = fmt.Errorf("No such route %q", route)
	}
	return r
}

func (u *urlBuilder) URL(out *string, route string) *urlBuilder {
	var r *mux.Route
	var url *url.URL
	if u.Error == nil {
		r = u.Route(route)
	}
	if u.Error == nil {
		url, u.Error = r.URL(u.Params...)
	}
	if u.Error == nil {
		*out = url.String()
	}
	return u
}

// externalURL makes a server-relative path absolute, as seen from the
// requesting client.  An explicitly configured base URL wins; failing
// that the X-Forwarded-Proto and X-Forwarded-Host headers of a
// fronting proxy are honored, then whatever the request itself says.
func (api *restAPI) externalURL(req *http.Request, path string) string {
	if api.Config.BaseURL != "" {
		return strings.TrimSuffix(api.Config.BaseURL, "/") + path
	}
	scheme := req.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if req.TLS != nil {
			scheme = "https"
		}
	}
	host := req.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = req.Host
	}
	if host == "" {
		return path
	}
	return scheme + "://" + host + path
}

// asDocument returns the decoded request body as a wire document.  A
// body-less request yields a nil map, which the restdata parsers
// treat as a document with nothing in it.
func asDocument(in interface{}) restdata.Document {
	doc, _ := in.(restdata.Document)
	return doc
}
