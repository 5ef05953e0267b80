// Copyright 2015-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct an openEO
// back-end based on command-line flags.
package backend

import (
	"errors"
	"strings"

	"github.com/diffeo/go-openeo/memory"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/postgres"
)

// Backend describes user-visible parameters to reach back-end
// storage.  This implements the flag.Value interface, and so a
// typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "backend", "impl:address of back-end storage")
//         flag.Parse()
//         b, err := backend.Create()
//     }
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory" or "postgres".
	Implementation string

	// Address holds some implementation-specific address, such as a
	// database connect string.
	Address string
}

// Create creates a new back-end.  This generally should be only
// called once.  If the back-end has in-process state, such as a
// database connection pool or an in-memory store, calling this
// multiple times will create multiple copies of that state.  In
// particular, if b.Implementation is "memory", multiple calls to this
// will create multiple independent openEO "worlds".
func (b *Backend) Create() (openeo.Backend, error) {
	switch b.Implementation {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return postgres.New(b.Address)
	default:
		return nil, errors.New("unknown backend " + b.Implementation)
	}
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  If Set returns a nil
// error then Create() will not fail on the implementation name.  Note
// that neither function attempts to validate the b.Address part of
// the string or attempts to actually make a connection.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) == 2 {
		b.Address = parts[1]
	}
	switch b.Implementation {
	case "memory", "postgres":
		return nil
	default:
		return errors.New("unknown backend " + b.Implementation)
	}
}
