// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"testing"

	"github.com/diffeo/go-openeo/openeo"
)

func TestEncodeDecodeBasicToken(t *testing.T) {
	tests := []struct{ userID, token string }{
		{"Mr.Test", "basic.TXIuVGVzdA=="},
		{"john", "basic.am9obg=="},
	}
	for _, test := range tests {
		enc := EncodeBasicToken(test.userID)
		if enc != test.token {
			t.Errorf("EncodeBasicToken(%q) => %q, want %q",
				test.userID, enc, test.token)
		}

		dec, err := DecodeBasicToken(test.token)
		if err != nil {
			t.Errorf("DecodeBasicToken(%q) => error %v",
				test.token, err)
		} else if dec != test.userID {
			t.Errorf("DecodeBasicToken(%q) => %q, want %q",
				test.token, dec, test.userID)
		}
	}
}

func TestDecodeBasicTokenInvalid(t *testing.T) {
	tests := []string{
		"",
		"basic.",
		"basic.blehrff",
		"TXIuVGVzdA==",
		"oidc.TXIuVGVzdA==",
	}
	for _, token := range tests {
		_, err := DecodeBasicToken(token)
		if err != openeo.ErrTokenInvalid {
			t.Errorf("DecodeBasicToken(%q) => error %v, want %v",
				token, err, openeo.ErrTokenInvalid)
		}
	}
}

func TestIsBasicToken(t *testing.T) {
	if !IsBasicToken("basic.TXIuVGVzdA==") {
		t.Error("IsBasicToken(basic token) => false")
	}
	if IsBasicToken("TXIuVGVzdA==") {
		t.Error("IsBasicToken(bare token) => true")
	}
}
