// Copyright 2015-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides a typed HTTP client for the openEO API
// served by the matching "restserver" package.
//
// The server in github.com/diffeo/go-openeo/cmd/openeod runs a
// compatible service.  Call New() with its base URL; for instance,
//
//	c, err := restclient.New("http://localhost:8080/")
//
// New reads the well-known discovery document and connects to the
// most recent production version advertised there.  NewDirect skips
// discovery and speaks to one versioned API tree by its root URL,
// which is how a caller gets a non-default protocol version:
//
//	c, err := restclient.NewDirect("http://localhost:8080/openeo/1.0.0/")
//
// Whatever the connected version, callers work with the canonical
// record shapes from the openeo package where one exists; the client
// reshapes requests for the version on the wire.  Metadata documents
// (collections, job and service descriptions) are returned as the
// free-form restdata.Document in exactly the shape the service sent,
// since their key sets are what changes between protocol generations.
//
// Authentication
//
// Metadata calls work without credentials.  Anything touching batch
// jobs needs Login() first; the bearer token is remembered on the
// client and sent on every later request, spelled with the "basic//"
// provider prefix from protocol 1.0.0 on.  Login replaces the
// client's credentials, so it should happen before the client is
// shared between goroutines; after that a Client is safe for
// concurrent use.
package restclient

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"

	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
)

// ErrNoUsableVersion is returned by New if the discovery document
// advertises no version the client can parse.
var ErrNoUsableVersion = errors.New("service advertises no usable API version")

// Client speaks to one versioned tree of an openEO service.
type Client struct {
	resource

	// Version is the canonical protocol version the tree speaks,
	// taken from its capability document.
	Version openeo.Version

	// Capabilities is the capability document the tree served when
	// the client connected.  Refresh() reloads it.
	Capabilities restdata.Capabilities
}

// New connects to an openEO service by its server base URL.  It reads
// the well-known discovery document and connects to the most recent
// production version advertised there, or the most recent version at
// all if nothing is marked production.
func New(baseURL string) (*Client, error) {
	base := resource{session: newSession()}
	var err error
	base.URL, err = parseBase(baseURL)
	if err != nil {
		return nil, err
	}

	discovery := restdata.Discovery{}
	err = base.GetFrom(".well-known/openeo", map[string]interface{}{}, &discovery)
	if err != nil {
		return nil, err
	}
	choice, err := chooseVersion(discovery)
	if err != nil {
		return nil, err
	}

	treeURL, err := base.URL.Parse(choice.URL)
	if err != nil {
		return nil, err
	}
	return connect(treeURL, base.session)
}

// NewDirect connects to a single versioned API tree by its root URL,
// skipping discovery.
func NewDirect(treeURL string) (*Client, error) {
	u, err := parseBase(treeURL)
	if err != nil {
		return nil, err
	}
	return connect(u, newSession())
}

// parseBase parses a base URL, guaranteeing the trailing slash that
// makes relative references resolve under it rather than beside it.
func parseBase(base string) (*url.URL, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return url.Parse(base)
}

func connect(treeURL *url.URL, s *session) (*Client, error) {
	if !strings.HasSuffix(treeURL.Path, "/") {
		treeURL.Path += "/"
	}
	c := &Client{resource: resource{URL: treeURL, session: s}}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// chooseVersion picks the discovery row to connect to: the highest
// production version, or the highest version at all if nothing is
// marked production.
func chooseVersion(discovery restdata.Discovery) (restdata.DiscoveryVersion, error) {
	var best restdata.DiscoveryVersion
	var bestVersion openeo.Version
	found := false
	for _, row := range discovery.Versions {
		v, err := openeo.ParseVersion(row.APIVersion)
		if err != nil {
			continue
		}
		better := !found ||
			(row.Production && !best.Production) ||
			(row.Production == best.Production && v.Compare(bestVersion) > 0)
		if better {
			best = row
			bestVersion = v
			found = true
		}
	}
	if !found {
		return best, ErrNoUsableVersion
	}
	return best, nil
}

// Refresh reloads the capability document from the tree root.
func (c *Client) Refresh() error {
	c.Capabilities = restdata.Capabilities{}
	if err := c.Get(&c.Capabilities); err != nil {
		return err
	}
	version, err := openeo.ParseVersion(c.Capabilities.APIVersion)
	if err != nil {
		return err
	}
	c.Version = version
	return nil
}

// Supports reports whether the connected tree advertises an endpoint,
// named by its wire path template and method; for instance,
// Supports("/jobs/{job_id}", "DELETE").
func (c *Client) Supports(path, method string) bool {
	for _, e := range c.Capabilities.Endpoints {
		if e.Path != path {
			continue
		}
		for _, m := range e.Methods {
			if m == method {
				return true
			}
		}
	}
	return false
}

// Health reports the service's liveness message, conventionally "OK".
func (c *Client) Health() (string, error) {
	h := restdata.Health{}
	err := c.GetFrom("health", map[string]interface{}{}, &h)
	return h.Health, err
}

// FileFormats returns the file format support table.  Versions before
// 1.0.0 only report output formats, so the input half is empty there.
func (c *Client) FileFormats() (openeo.FileFormats, error) {
	formats := openeo.FileFormats{}
	if c.Version.AtLeast(openeo.V100) {
		err := c.GetFrom("file_formats", map[string]interface{}{}, &formats)
		return formats, err
	}
	output := map[string]openeo.FileFormat{}
	err := c.GetFrom("output_formats", map[string]interface{}{}, &output)
	formats.Output = output
	return formats, err
}

// UDFRuntimes returns the service's UDF runtime table.
func (c *Client) UDFRuntimes() (map[string]interface{}, error) {
	runtimes := map[string]interface{}{}
	err := c.GetFrom("udf_runtimes", map[string]interface{}{}, &runtimes)
	return runtimes, err
}

// Login exchanges basic credentials for a bearer token, which is
// remembered on the client and sent on every later request.
func (c *Client) Login(username, password string) error {
	resp := restdata.AuthResponse{}
	// Basic credentials ride the Authorization header for this one
	// request; afterward the header carries the issued token
	c.session.authorization = "Basic " +
		base64.StdEncoding.EncodeToString([]byte(username+":"+password))
	err := c.GetFrom("credentials/basic", map[string]interface{}{}, &resp)
	if err != nil {
		c.session.authorization = ""
		return err
	}
	c.session.setToken(resp.AccessToken, c.Version)
	return nil
}

// setToken installs a bearer token.  From protocol 1.0.0 on the token
// travels prefixed with the kind of provider that issued it.
func (s *session) setToken(token string, v openeo.Version) {
	if v.AtLeast(openeo.V100) {
		s.authorization = "Bearer basic//" + token
	} else {
		s.authorization = "Bearer " + token
	}
}

// Me describes the authenticated user.
func (c *Client) Me() (restdata.UserInfo, error) {
	info := restdata.UserInfo{}
	err := c.GetFrom("me", map[string]interface{}{}, &info)
	return info, err
}

// Collections lists the catalog as summary documents.
func (c *Client) Collections() ([]restdata.Document, error) {
	list := restdata.CollectionList{}
	err := c.GetFrom("collections", map[string]interface{}{}, &list)
	return list.Collections, err
}

// Collection retrieves the full metadata document of one collection.
func (c *Client) Collection(id string) (restdata.Document, error) {
	doc := restdata.Document{}
	err := c.GetFrom("collections/{collection_id}",
		map[string]interface{}{"collection_id": id}, &doc)
	return doc, err
}

// Processes lists the specs of the processes the connected version
// offers.
func (c *Client) Processes() ([]map[string]interface{}, error) {
	list := restdata.ProcessList{}
	err := c.GetFrom("processes", map[string]interface{}{}, &list)
	return list.Processes, err
}

// Process retrieves the spec of a single process.
func (c *Client) Process(id string) (map[string]interface{}, error) {
	doc := map[string]interface{}{}
	err := c.GetFrom("processes/{process_id}",
		map[string]interface{}{"process_id": id}, &doc)
	return doc, err
}

// Compute runs a process graph synchronously and returns the result
// artifact's content and media type.  The process document is the
// canonical shape, a map with a "process_graph" key; the client
// reshapes it for the connected version.
func (c *Client) Compute(process map[string]interface{}) ([]byte, string, error) {
	doc := restdata.Document{}
	if c.Version.AtLeast(openeo.V100) {
		doc["process"] = process
	} else if pg, ok := process["process_graph"]; ok {
		doc["process_graph"] = pg
	}
	u, err := c.Template("result", map[string]interface{}{})
	if err != nil {
		return nil, "", err
	}
	return c.raw("POST", u, doc)
}
