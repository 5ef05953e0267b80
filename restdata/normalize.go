// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-openeo/openeo"
)

// Normalizer renders canonical back-end records into version-shaped
// wire documents.  It is stateless apart from its logger and is safe
// for concurrent use.
//
// Each entity family comes in a full and a summary rendering; listing
// routes use summaries, single-entity routes the full form.  Records
// that cannot be rendered at all (no identity) fail with
// openeo.ErrMissingIdentity; records that are merely incomplete are
// patched up with defaults, with a warning for the fields where no
// sensible default exists.
type Normalizer struct {
	// Log receives normalization diagnostics.  If nil, the logrus
	// standard logger is used.
	Log *logrus.Logger
}

func (n *Normalizer) log() *logrus.Logger {
	if n.Log != nil {
		return n.Log
	}
	return logrus.StandardLogger()
}

// collectionSummaryKeys are the fields a summary collection rendering
// may carry; everything else is for the full rendering only.
var collectionSummaryKeys = []string{
	"stac_version", "stac_extensions", "id", "title", "description", "keywords", "version",
	"deprecated", "license", "providers", "extent", "links",
}

// NormalizeCollection renders a collection record in the shape of the
// given protocol version.  Fields whose names start with "_" never
// reach the wire.  Datacube metadata is copied between its pre-1.0
// home (under "properties") and its 1.0 home ("cube:dimensions" and
// "summaries") as the target version requires, with a warning when
// the record's metadata is in the other generation's style.
func (n *Normalizer) NormalizeCollection(c openeo.Collection, v openeo.Version, full bool) (Document, error) {
	doc := Document(c.Document())
	for key := range doc {
		if strings.HasPrefix(key, "_") {
			delete(doc, key)
		}
	}

	id, _ := doc["id"].(string)
	if id == "" {
		n.log().WithField("metadata", doc).Error("Collection metadata has no id field")
		return nil, openeo.ErrMissingIdentity{Kind: "collection"}
	}

	// Version dependent metadata conversions
	cubeDimsV1 := deepGet(doc, "cube:dimensions")
	cubeDimsPre := deepGet(doc, "properties", "cube:dimensions")
	eoBandsV1 := deepGet(doc, "summaries", "eo:bands")
	eoBandsPre := deepGet(doc, "properties", "eo:bands")
	if v.Below(openeo.V100) {
		if full && isEmpty(cubeDimsPre) && !isEmpty(cubeDimsV1) {
			n.log().Warnf("Collection metadata %q in API 1.0 style instead of 0.4 style", "cube:dimensions")
			setNested(doc, "properties", "cube:dimensions", cubeDimsV1)
		}
		if full && isEmpty(eoBandsPre) && !isEmpty(eoBandsV1) {
			n.log().Warnf("Collection metadata %q in API 1.0 style instead of 0.4 style", "eo:bands")
			setNested(doc, "properties", "eo:bands", eoBandsV1)
		}
	} else {
		if full && isEmpty(cubeDimsV1) && !isEmpty(cubeDimsPre) {
			n.log().Warnf("Collection metadata %q in API 0.4 style instead of 1.0 style", "cube:dimensions")
			doc["cube:dimensions"] = cubeDimsPre
		}
		if full && isEmpty(eoBandsV1) && !isEmpty(eoBandsPre) {
			n.log().Warnf("Collection metadata %q in API 0.4 style instead of 1.0 style", "eo:bands")
			setNested(doc, "summaries", "eo:bands", eoBandsPre)
		}
	}

	// Make sure some required fields are set.
	if _, ok := doc["stac_version"]; !ok {
		if v.AtLeast(openeo.V100) {
			doc["stac_version"] = "0.9.0"
		} else {
			doc["stac_version"] = "0.6.2"
		}
	}
	if _, ok := doc["links"]; !ok {
		doc["links"] = []interface{}{}
	}
	if _, ok := doc["description"]; !ok {
		doc["description"] = id
	}
	if _, ok := doc["license"]; !ok {
		doc["license"] = "proprietary"
	}

	// Warn about missing fields where simple defaults are not feasible.
	type fallback struct {
		key   string
		value interface{}
	}
	fallbacks := []fallback{
		{"extent", map[string]interface{}{
			"spatial":  []interface{}{0, 0, 0, 0},
			"temporal": []interface{}{nil, nil},
		}},
	}
	if full {
		if v.AtLeast(openeo.V100) {
			fallbacks = append(fallbacks,
				fallback{"cube:dimensions", map[string]interface{}{}},
				fallback{"summaries", map[string]interface{}{}})
		} else {
			fallbacks = append(fallbacks,
				fallback{"properties", map[string]interface{}{}},
				fallback{"other_properties", map[string]interface{}{}})
		}
	}
	for _, fallback := range fallbacks {
		if _, ok := doc[fallback.key]; !ok {
			n.log().Warnf("Collection %q metadata does not have field %q.", id, fallback.key)
			doc[fallback.key] = fallback.value
		}
	}

	if !full {
		filtered := make(Document, len(collectionSummaryKeys))
		for _, key := range collectionSummaryKeys {
			if value, ok := doc[key]; ok {
				filtered[key] = value
			}
		}
		doc = filtered
	}

	return doc, nil
}

// deepGet walks nested maps and returns the value at the end of the
// key path, or nil if any step is missing.
func deepGet(doc Document, keys ...string) interface{} {
	var current interface{} = map[string]interface{}(doc)
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[key]
		if !ok {
			return nil
		}
	}
	return current
}

// isEmpty reports whether a metadata value is absent or empty, the
// presence test the remap rules use.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	case []map[string]interface{}:
		return len(t) == 0
	}
	return false
}

// setNested stores doc[outer][inner] = value without mutating a
// submap that may be shared with the backend's record.
func setNested(doc Document, outer, inner string, value interface{}) {
	sub := make(map[string]interface{})
	if existing, ok := doc[outer].(map[string]interface{}); ok {
		for k, v := range existing {
			sub[k] = v
		}
	}
	sub[inner] = value
	doc[outer] = sub
}

// formatTime renders a timestamp in the protocol's RFC 3339 UTC
// whole-second form.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
