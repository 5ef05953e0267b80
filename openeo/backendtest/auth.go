// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backendtest

import (
	"github.com/diffeo/go-openeo/openeo"
)

// TestBasicAuth checks the password flow with the suite's credential
// pair.
func (s *Suite) TestBasicAuth() {
	auth := s.Backend.Auth()

	token, err := auth.AuthenticateBasic(s.User, s.Password)
	if !s.NoError(err) {
		return
	}
	s.NotEmpty(token)

	// The token resolves back to the user
	user, err := auth.VerifyToken(token)
	if s.NoError(err) {
		s.Equal(s.User, user)
	}
}

// TestBadCredentials checks that wrong passwords are rejected.
func (s *Suite) TestBadCredentials() {
	auth := s.Backend.Auth()

	_, err := auth.AuthenticateBasic(s.User, s.Password+"not")
	s.Equal(openeo.ErrCredentialsInvalid, err)

	_, err = auth.AuthenticateBasic("", "")
	s.Equal(openeo.ErrCredentialsInvalid, err)
}

// TestBadToken checks that garbage tokens are rejected.
func (s *Suite) TestBadToken() {
	auth := s.Backend.Auth()

	for _, token := range []string{"", "blehrff", "basic.!!!"} {
		_, err := auth.VerifyToken(token)
		s.Equal(openeo.ErrTokenInvalid, err, "token %q", token)
	}
}
