// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package openeo

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic protocol version.  Versions are value objects
// and compare by (major, minor, patch) in the usual way.
type Version struct {
	Major, Minor, Patch int
}

// Notable versions referenced across the API surface.
var (
	// V031 is the last 0.3-series version; routes kept only for
	// 0.3-era capability parity are gated on it.
	V031 = Version{0, 3, 1}

	// V040 is the first supported version.
	V040 = Version{0, 4, 0}

	// V100 is the boundary between the two wire-format generations.
	V100 = Version{1, 0, 0}
)

// ParseVersion parses a dotted version string.  One to three numeric
// segments are accepted; missing segments are zero, so "1.0" parses
// the same as "1.0.0".
func ParseVersion(s string) (Version, error) {
	var v Version
	if s == "" {
		return v, fmt.Errorf("invalid version %q", s)
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return v, fmt.Errorf("invalid version %q", s)
	}
	fields := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return v, fmt.Errorf("invalid version %q", s)
		}
		*fields[i] = n
	}
	return v, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is ordered before, the same as, or
// after o.
func (v Version) Compare(o Version) int {
	pairs := [][2]int{
		{v.Major, o.Major},
		{v.Minor, o.Minor},
		{v.Patch, o.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is o or newer.
func (v Version) AtLeast(o Version) bool {
	return v.Compare(o) >= 0
}

// Below reports whether v is older than o.
func (v Version) Below(o Version) bool {
	return v.Compare(o) < 0
}

// IsZero reports whether v is the zero version, used as "no version".
func (v Version) IsZero() bool {
	return v == Version{}
}

// MarshalText returns the dotted form of a version.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText populates a version from its dotted form.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// AtLeast returns a predicate accepting versions at or above min.
// These predicate constructors exist for endpoint gating, where a
// registration carries the rule and the capability listing applies it
// to the resolved version.
func AtLeast(min Version) func(Version) bool {
	return func(v Version) bool { return v.AtLeast(min) }
}

// Below returns a predicate accepting versions strictly older than max.
func Below(max Version) func(Version) bool {
	return func(v Version) bool { return v.Below(max) }
}

// AtMost returns a predicate accepting versions at or below max.
func AtMost(max Version) func(Version) bool {
	return func(v Version) bool { return v.Compare(max) <= 0 }
}

// VersionInfo is one row of a VersionCatalog: a version string as a
// client may request it, the canonical version it resolves to, and its
// flags.  Several aliases may share a canonical version (e.g. "0.4"
// and "0.4.2").
type VersionInfo struct {
	// Alias is the version string as it appears in a request path.
	Alias string

	// Canonical is the full version the alias resolves to.
	Canonical Version

	// Supported versions resolve successfully; unsupported ones are
	// recognized but rejected.
	Supported bool

	// Advertised versions appear in the discovery document and in the
	// alternatives list of version errors.  Every advertised version
	// must be supported.
	Advertised bool

	// Production marks versions considered production quality; the
	// flag is reported in capability and discovery documents.
	Production bool
}

// VersionCatalog is the static table of protocol versions a server
// knows about.  A catalog is built once at startup and read-only
// afterward, so it may be shared across requests without locking.
type VersionCatalog struct {
	infos   []VersionInfo
	byAlias map[string]VersionInfo
	def     Version
}

// NewVersionCatalog builds a catalog from a default alias and a list
// of rows.  It fails if an alias repeats, if an advertised row is not
// supported, or if the default alias does not resolve.
func NewVersionCatalog(defaultAlias string, infos ...VersionInfo) (*VersionCatalog, error) {
	catalog := &VersionCatalog{
		infos:   infos,
		byAlias: make(map[string]VersionInfo, len(infos)),
	}
	for _, info := range infos {
		if _, dup := catalog.byAlias[info.Alias]; dup {
			return nil, fmt.Errorf("duplicate version alias %q", info.Alias)
		}
		if info.Advertised && !info.Supported {
			return nil, fmt.Errorf("advertised version %q is not supported", info.Alias)
		}
		catalog.byAlias[info.Alias] = info
	}
	def, err := catalog.Resolve(defaultAlias)
	if err != nil {
		return nil, fmt.Errorf("default version %q is not usable", defaultAlias)
	}
	catalog.def = def
	return catalog, nil
}

// DefaultVersionCatalog returns the standard version table: the 0.3
// series is recognized but unsupported, the 0.4 series is supported,
// advertised, and production, and 1.0.0 is supported and advertised
// but not yet production.  Short aliases are advertised alongside the
// versions they resolve to, so discovery may list the same canonical
// version more than once.
func DefaultVersionCatalog() *VersionCatalog {
	catalog, err := NewVersionCatalog(
		"0.4.2",
		VersionInfo{Alias: "0.3.0", Canonical: Version{0, 3, 0}},
		VersionInfo{Alias: "0.3.1", Canonical: Version{0, 3, 1}},
		VersionInfo{Alias: "0.3", Canonical: Version{0, 3, 1}},
		VersionInfo{Alias: "0.4.0", Canonical: Version{0, 4, 0}, Supported: true, Advertised: true, Production: true},
		VersionInfo{Alias: "0.4.1", Canonical: Version{0, 4, 1}, Supported: true, Advertised: true, Production: true},
		VersionInfo{Alias: "0.4.2", Canonical: Version{0, 4, 2}, Supported: true, Advertised: true, Production: true},
		VersionInfo{Alias: "0.4", Canonical: Version{0, 4, 2}, Supported: true, Advertised: true, Production: true},
		VersionInfo{Alias: "1.0.0", Canonical: Version{1, 0, 0}, Supported: true, Advertised: true},
		VersionInfo{Alias: "1.0", Canonical: Version{1, 0, 0}, Supported: true, Advertised: true},
	)
	if err != nil {
		// The builtin table is validated by its own tests; a failure
		// here is a programming error.
		panic(err)
	}
	return catalog
}

// Default returns the canonical version used when a request does not
// name one.
func (c *VersionCatalog) Default() Version {
	return c.def
}

// Resolve maps a requested version string to its canonical version.
// Unknown and unsupported versions fail with ErrVersionUnsupported
// listing the advertised alternatives.  Resolving the dotted form of
// an already-canonical version returns it unchanged.
func (c *VersionCatalog) Resolve(token string) (Version, error) {
	info, ok := c.byAlias[token]
	if !ok || !info.Supported {
		return Version{}, ErrVersionUnsupported{
			Requested:  token,
			Advertised: c.AdvertisedAliases(),
		}
	}
	return info.Canonical, nil
}

// Advertised returns the advertised rows in catalog order, for the
// discovery document.
func (c *VersionCatalog) Advertised() []VersionInfo {
	var infos []VersionInfo
	for _, info := range c.infos {
		if info.Advertised {
			infos = append(infos, info)
		}
	}
	return infos
}

// AdvertisedAliases returns the alias strings of the advertised rows
// in catalog order.
func (c *VersionCatalog) AdvertisedAliases() []string {
	var aliases []string
	for _, info := range c.infos {
		if info.Advertised {
			aliases = append(aliases, info.Alias)
		}
	}
	return aliases
}

// Production reports whether the given canonical version is marked
// production in the catalog.  A version not present in any row is not
// production.
func (c *VersionCatalog) Production(v Version) bool {
	for _, info := range c.infos {
		if info.Canonical == v && info.Supported {
			return info.Production
		}
	}
	return false
}
