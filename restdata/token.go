// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"encoding/base64"
	"strings"

	"github.com/diffeo/go-openeo/openeo"
)

// basicTokenPrefix marks access tokens issued by HTTP basic
// authentication, as opposed to OpenID Connect tokens.
const basicTokenPrefix = "basic."

// EncodeBasicToken renders an access token for a user authenticated
// via HTTP basic authentication.  The token is the user ID, base64
// encoded, behind a fixed prefix, so that tokens can be verified
// without server-side session state.
func EncodeBasicToken(userID string) string {
	return basicTokenPrefix + base64.StdEncoding.EncodeToString([]byte(userID))
}

// DecodeBasicToken recovers the user ID from a basic access token.
// If the token does not carry the basic prefix, or its payload is not
// valid base64, or it names no user at all, returns
// openeo.ErrTokenInvalid.
func DecodeBasicToken(token string) (string, error) {
	if !strings.HasPrefix(token, basicTokenPrefix) {
		return "", openeo.ErrTokenInvalid
	}
	payload := strings.TrimPrefix(token, basicTokenPrefix)
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", openeo.ErrTokenInvalid
	}
	if len(decoded) == 0 {
		return "", openeo.ErrTokenInvalid
	}
	return string(decoded), nil
}

// IsBasicToken reports whether an access token was issued by HTTP
// basic authentication.  Tokens without the basic prefix are passed
// to the OpenID Connect verifier instead.
func IsBasicToken(token string) bool {
	return strings.HasPrefix(token, basicTokenPrefix)
}
