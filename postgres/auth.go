// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
)

// pgAuth is the same development credential checker the in-memory
// backend uses: any username is accepted when the password is the
// username with "123" appended, and tokens are the stateless basic
// tokens from the restdata package.  Nothing about authentication is
// stored in the database, so tokens keep working across restarts and
// across a fleet of servers sharing one database.  A real identity
// provider would replace this object wholesale.
type pgAuth struct {
	backend *pgBackend
}

// openeo.Authenticator interface:

func (a *pgAuth) AuthenticateBasic(username, password string) (string, error) {
	if username == "" || password != username+"123" {
		return "", openeo.ErrCredentialsInvalid
	}
	return restdata.EncodeBasicToken(username), nil
}

func (a *pgAuth) VerifyToken(token string) (string, error) {
	return restdata.DecodeBasicToken(token)
}
