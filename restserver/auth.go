// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-openeo/endpoint"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restdata"
	"github.com/gorilla/mux"
)

// CredentialsBasicGet exchanges HTTP Basic credentials for a bearer
// token.  Protocol generations before 1.0.0 also echo the user id.
func (api *restAPI) CredentialsBasicGet(ctx *context) (interface{}, error) {
	username, password, err := basicCredentials(ctx.Request)
	if err != nil {
		return nil, err
	}
	token, err := api.Backend.Auth().AuthenticateBasic(username, password)
	if err != nil {
		return nil, err
	}
	resp := restdata.AuthResponse{AccessToken: token}
	if ctx.Version.Below(openeo.V100) {
		resp.UserID = username
	}
	return resp, nil
}

// CredentialsOIDCGet redirects to the OpenID Connect provider
// configuration, when one is configured.
func (api *restAPI) CredentialsOIDCGet(ctx *context) (interface{}, error) {
	if api.Config.OpenIDConnectURL == "" {
		return nil, errNotImplemented{Text: "OpenID Connect is not configured"}
	}
	return responseRedirect{Location: api.Config.OpenIDConnectURL}, nil
}

// MeGet describes the authenticated user.
func (api *restAPI) MeGet(ctx *context) (interface{}, error) {
	user, err := ctx.Identity()
	if err != nil {
		return nil, err
	}
	return restdata.UserInfo{UserID: user}, nil
}

// populateAuth adds the credential routes to an API tree.
func (api *restAPI) populateAuth(r *mux.Router, named bool) {
	api.route(r, named, endpoint.Endpoint{
		Path:    "/credentials/basic",
		Methods: []string{"GET"},
	}, "credentialsBasic", &resourceHandler{
		Representation: restdata.AuthResponse{},
		Get:            api.CredentialsBasicGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/credentials/oidc",
		Methods: []string{"GET"},
	}, "credentialsOIDC", &resourceHandler{
		Representation: restdata.Document{},
		Get:            api.CredentialsOIDCGet,
	})
	api.route(r, named, endpoint.Endpoint{
		Path:    "/me",
		Methods: []string{"GET"},
	}, "me", &resourceHandler{
		Representation: restdata.UserInfo{},
		Get:            api.MeGet,
	})
}
