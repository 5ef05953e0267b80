// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
)

// memAuth is a deliberately fake credential checker.  Any username is
// accepted when the password is the username with "123" appended, and
// the tokens it issues are the stateless basic tokens from the
// restdata package, so tokens survive a backend restart.  There is no
// OpenID Connect support: tokens without the basic prefix are simply
// invalid.
type memAuth struct {
	backend *memBackend
}

func newAuth(backend *memBackend) *memAuth {
	return &memAuth{backend: backend}
}

// openeo.Authenticator interface:

func (a *memAuth) AuthenticateBasic(username, password string) (string, error) {
	if username == "" || password != username+"123" {
		return "", openeo.ErrCredentialsInvalid
	}
	return restdata.EncodeBasicToken(username), nil
}

func (a *memAuth) VerifyToken(token string) (string, error) {
	return restdata.DecodeBasicToken(token)
}
