// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package openeo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in  string
		out Version
		bad bool
	}{
		{in: "1.0.0", out: Version{1, 0, 0}},
		{in: "0.4.2", out: Version{0, 4, 2}},
		{in: "0.4", out: Version{0, 4, 0}},
		{in: "1", out: Version{1, 0, 0}},
		{in: "", bad: true},
		{in: "1.0.0.0", bad: true},
		{in: "1.x", bad: true},
		{in: "-1.0.0", bad: true},
	}
	for _, test := range tests {
		v, err := ParseVersion(test.in)
		if test.bad {
			assert.Error(t, err, "ParseVersion(%q)", test.in)
		} else if assert.NoError(t, err, "ParseVersion(%q)", test.in) {
			assert.Equal(t, test.out, v)
		}
	}
}

func TestVersionCompare(t *testing.T) {
	assert.True(t, Version{1, 0, 0}.AtLeast(Version{0, 4, 2}))
	assert.True(t, Version{1, 0, 0}.AtLeast(Version{1, 0, 0}))
	assert.False(t, Version{0, 4, 2}.AtLeast(Version{1, 0, 0}))
	assert.True(t, Version{0, 4, 2}.Below(Version{1, 0, 0}))
	assert.False(t, Version{1, 0, 0}.Below(Version{1, 0, 0}))
	assert.Equal(t, 0, Version{0, 4, 1}.Compare(Version{0, 4, 1}))
	assert.Equal(t, -1, Version{0, 4, 1}.Compare(Version{0, 4, 2}))
	assert.Equal(t, 1, Version{0, 10, 0}.Compare(Version{0, 9, 9}))
}

func TestVersionPredicates(t *testing.T) {
	atLeast := AtLeast(V100)
	assert.True(t, atLeast(Version{1, 0, 0}))
	assert.True(t, atLeast(Version{1, 1, 0}))
	assert.False(t, atLeast(Version{0, 4, 2}))

	below := Below(V100)
	assert.True(t, below(Version{0, 4, 2}))
	assert.False(t, below(Version{1, 0, 0}))

	atMost := AtMost(V031)
	assert.True(t, atMost(Version{0, 3, 1}))
	assert.True(t, atMost(Version{0, 3, 0}))
	assert.False(t, atMost(Version{0, 4, 0}))
}

func TestVersionText(t *testing.T) {
	text, err := Version{0, 4, 2}.MarshalText()
	if assert.NoError(t, err) {
		assert.Equal(t, "0.4.2", string(text))
	}
	var v Version
	if assert.NoError(t, v.UnmarshalText([]byte("1.0.0"))) {
		assert.Equal(t, V100, v)
	}
	assert.Error(t, v.UnmarshalText([]byte("one")))
}

// TestResolveAliases checks that aliases and full versions resolve to
// the same canonical version, and that resolution is idempotent.
func TestResolveAliases(t *testing.T) {
	catalog := DefaultVersionCatalog()

	v, err := catalog.Resolve("0.4")
	if assert.NoError(t, err) {
		assert.Equal(t, Version{0, 4, 2}, v)
	}

	again, err := catalog.Resolve(v.String())
	if assert.NoError(t, err) {
		assert.Equal(t, v, again)
	}

	v, err = catalog.Resolve("1.0")
	if assert.NoError(t, err) {
		assert.Equal(t, V100, v)
	}

	assert.Equal(t, Version{0, 4, 2}, catalog.Default())
}

// TestResolveUnsupported checks both failure paths: a version that is
// recognized but unsupported, and one that is entirely unknown.  Both
// report the advertised alternatives.
func TestResolveUnsupported(t *testing.T) {
	catalog := DefaultVersionCatalog()
	advertised := []string{"0.4.0", "0.4.1", "0.4.2", "0.4", "1.0.0", "1.0"}

	for _, token := range []string{"0.3.0", "0.3", "2.0.0", "nope"} {
		_, err := catalog.Resolve(token)
		if assert.Error(t, err, "Resolve(%q)", token) {
			unsupported, ok := err.(ErrVersionUnsupported)
			if assert.True(t, ok, "Resolve(%q) error type", token) {
				assert.Equal(t, token, unsupported.Requested)
				assert.Equal(t, advertised, unsupported.Advertised)
			}
		}
	}
}

// TestAdvertisedAliases checks that short aliases are advertised next
// to the versions they resolve to, in catalog order.
func TestAdvertisedAliases(t *testing.T) {
	catalog := DefaultVersionCatalog()
	assert.Equal(t,
		[]string{"0.4.0", "0.4.1", "0.4.2", "0.4", "1.0.0", "1.0"},
		catalog.AdvertisedAliases())

	for _, info := range catalog.Advertised() {
		if info.Alias == "0.4" {
			assert.Equal(t, Version{0, 4, 2}, info.Canonical)
			assert.True(t, info.Production)
		}
		if info.Alias == "1.0" {
			assert.Equal(t, V100, info.Canonical)
			assert.False(t, info.Production)
		}
	}
}

// TestAdvertisedSupported checks the catalog invariant that every
// advertised version is supported, both in the builtin table and in
// the constructor.
func TestAdvertisedSupported(t *testing.T) {
	for _, info := range DefaultVersionCatalog().Advertised() {
		assert.True(t, info.Supported, "advertised %q", info.Alias)
	}

	_, err := NewVersionCatalog("9.9.9",
		VersionInfo{Alias: "9.9.9", Canonical: Version{9, 9, 9}, Advertised: true},
	)
	assert.Error(t, err)
}

func TestCatalogValidation(t *testing.T) {
	_, err := NewVersionCatalog("1.0.0",
		VersionInfo{Alias: "1.0.0", Canonical: V100, Supported: true},
		VersionInfo{Alias: "1.0.0", Canonical: V100, Supported: true},
	)
	assert.Error(t, err, "duplicate alias")

	_, err = NewVersionCatalog("0.4.2",
		VersionInfo{Alias: "1.0.0", Canonical: V100, Supported: true},
	)
	assert.Error(t, err, "unresolvable default")
}

func TestCatalogProduction(t *testing.T) {
	catalog := DefaultVersionCatalog()
	assert.True(t, catalog.Production(Version{0, 4, 2}))
	assert.False(t, catalog.Production(V100))
	assert.False(t, catalog.Production(Version{2, 0, 0}))
}
