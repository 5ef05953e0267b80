// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/diffeo/go-openeo/openeo"
)

// testNormalizer returns a normalizer whose log output is captured
// instead of printed.
func testNormalizer() (*Normalizer, *test.Hook) {
	log, hook := test.NewNullLogger()
	return &Normalizer{Log: log}, hook
}

func loggedMessages(hook *test.Hook, level logrus.Level) []string {
	var msgs []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == level {
			msgs = append(msgs, entry.Message)
		}
	}
	return msgs
}

func TestNormalizeCollectionNoID(t *testing.T) {
	n, hook := testNormalizer()
	c := openeo.Collection{Extra: map[string]interface{}{"foo": "bar"}}
	_, err := n.NormalizeCollection(c, openeo.V100, false)
	assert.Equal(t, openeo.ErrMissingIdentity{Kind: "collection"}, err)
	errors := loggedMessages(hook, logrus.ErrorLevel)
	if assert.Len(t, errors, 1) {
		assert.Contains(t, errors[0], "no id field")
	}
}

func TestNormalizeCollectionMinimal040(t *testing.T) {
	n, hook := testNormalizer()
	doc, err := n.NormalizeCollection(openeo.Collection{ID: "foobar"}, openeo.Version{Major: 0, Minor: 4, Patch: 2}, false)
	assert.NoError(t, err)
	assert.Equal(t, Document{
		"id":           "foobar",
		"stac_version": "0.6.2",
		"description":  "foobar",
		"extent": map[string]interface{}{
			"spatial":  []interface{}{0, 0, 0, 0},
			"temporal": []interface{}{nil, nil},
		},
		"license": "proprietary",
		"links":   []interface{}{},
	}, doc)
	assert.Equal(t, []string{
		`Collection "foobar" metadata does not have field "extent".`,
	}, loggedMessages(hook, logrus.WarnLevel))
}

func TestNormalizeCollectionMinimalFull040(t *testing.T) {
	n, hook := testNormalizer()
	doc, err := n.NormalizeCollection(openeo.Collection{ID: "foobar"}, openeo.Version{Major: 0, Minor: 4, Patch: 2}, true)
	assert.NoError(t, err)
	assert.Equal(t, Document{
		"id":           "foobar",
		"stac_version": "0.6.2",
		"description":  "foobar",
		"extent": map[string]interface{}{
			"spatial":  []interface{}{0, 0, 0, 0},
			"temporal": []interface{}{nil, nil},
		},
		"license":          "proprietary",
		"properties":       map[string]interface{}{},
		"other_properties": map[string]interface{}{},
		"links":            []interface{}{},
	}, doc)
	assert.ElementsMatch(t, []string{
		`Collection "foobar" metadata does not have field "extent".`,
		`Collection "foobar" metadata does not have field "properties".`,
		`Collection "foobar" metadata does not have field "other_properties".`,
	}, loggedMessages(hook, logrus.WarnLevel))
}

func TestNormalizeCollectionMinimal100(t *testing.T) {
	n, hook := testNormalizer()
	doc, err := n.NormalizeCollection(openeo.Collection{ID: "foobar"}, openeo.V100, false)
	assert.NoError(t, err)
	assert.Equal(t, Document{
		"id":           "foobar",
		"stac_version": "0.9.0",
		"description":  "foobar",
		"extent": map[string]interface{}{
			"spatial":  []interface{}{0, 0, 0, 0},
			"temporal": []interface{}{nil, nil},
		},
		"license": "proprietary",
		"links":   []interface{}{},
	}, doc)
	assert.Equal(t, []string{
		`Collection "foobar" metadata does not have field "extent".`,
	}, loggedMessages(hook, logrus.WarnLevel))
}

func TestNormalizeCollectionMinimalFull100(t *testing.T) {
	n, hook := testNormalizer()
	doc, err := n.NormalizeCollection(openeo.Collection{ID: "foobar"}, openeo.V100, true)
	assert.NoError(t, err)
	assert.Equal(t, Document{
		"id":           "foobar",
		"stac_version": "0.9.0",
		"description":  "foobar",
		"extent": map[string]interface{}{
			"spatial":  []interface{}{0, 0, 0, 0},
			"temporal": []interface{}{nil, nil},
		},
		"license":         "proprietary",
		"cube:dimensions": map[string]interface{}{},
		"summaries":       map[string]interface{}{},
		"links":           []interface{}{},
	}, doc)
	assert.ElementsMatch(t, []string{
		`Collection "foobar" metadata does not have field "extent".`,
		`Collection "foobar" metadata does not have field "cube:dimensions".`,
		`Collection "foobar" metadata does not have field "summaries".`,
	}, loggedMessages(hook, logrus.WarnLevel))
}

func TestNormalizeCollectionDimensionsAndBands040(t *testing.T) {
	n, hook := testNormalizer()
	dims := map[string]interface{}{
		"x": map[string]interface{}{"type": "spatial"},
		"b": map[string]interface{}{"type": "bands", "values": []interface{}{"B02", "B03"}},
	}
	bands := []interface{}{
		map[string]interface{}{"name": "B02"},
		map[string]interface{}{"name": "B03"},
	}
	c := openeo.Collection{
		ID:             "foobar",
		CubeDimensions: dims,
		Summaries:      map[string]interface{}{"eo:bands": bands},
	}
	doc, err := n.NormalizeCollection(c, openeo.V040, true)
	assert.NoError(t, err)
	props, ok := doc["properties"].(map[string]interface{})
	if assert.True(t, ok, "properties submap") {
		assert.Equal(t, dims, props["cube:dimensions"])
		assert.Equal(t, bands, props["eo:bands"])
	}
	warnings := loggedMessages(hook, logrus.WarnLevel)
	assert.Contains(t, warnings, `Collection metadata "cube:dimensions" in API 1.0 style instead of 0.4 style`)
	assert.Contains(t, warnings, `Collection metadata "eo:bands" in API 1.0 style instead of 0.4 style`)
}

func TestNormalizeCollectionDimensionsAndBands100(t *testing.T) {
	n, hook := testNormalizer()
	dims := map[string]interface{}{
		"x": map[string]interface{}{"type": "spatial"},
		"b": map[string]interface{}{"type": "bands", "values": []interface{}{"B02", "B03"}},
	}
	bands := []interface{}{
		map[string]interface{}{"name": "B02"},
		map[string]interface{}{"name": "B03"},
	}
	c := openeo.Collection{
		ID: "foobar",
		Properties: map[string]interface{}{
			"cube:dimensions": dims,
			"eo:bands":        bands,
		},
	}
	doc, err := n.NormalizeCollection(c, openeo.V100, true)
	assert.NoError(t, err)
	assert.Equal(t, dims, doc["cube:dimensions"])
	summaries, ok := doc["summaries"].(map[string]interface{})
	if assert.True(t, ok, "summaries submap") {
		assert.Equal(t, bands, summaries["eo:bands"])
	}
	warnings := loggedMessages(hook, logrus.WarnLevel)
	assert.Contains(t, warnings, `Collection metadata "cube:dimensions" in API 0.4 style instead of 1.0 style`)
	assert.Contains(t, warnings, `Collection metadata "eo:bands" in API 0.4 style instead of 1.0 style`)
}

func TestNormalizeCollectionStripsPrivateFields(t *testing.T) {
	n, _ := testNormalizer()
	c := openeo.Collection{
		ID: "foobar",
		Extra: map[string]interface{}{
			"_private": map[string]interface{}{"password": "hunter2"},
		},
	}
	doc, err := n.NormalizeCollection(c, openeo.V100, true)
	assert.NoError(t, err)
	assert.NotContains(t, doc, "_private")
}

func TestNormalizeCollectionCompleteRecordNoWarnings(t *testing.T) {
	n, hook := testNormalizer()
	c := openeo.Collection{
		ID:          "S2_FAPAR_CLOUDCOVER",
		Description: "fraction of the solar radiation absorbed by live leaves",
		License:     "free",
		StacVersion: "0.9.0",
		Extent: map[string]interface{}{
			"spatial":  map[string]interface{}{"bbox": []interface{}{[]interface{}{-180, -90, 180, 90}}},
			"temporal": map[string]interface{}{"interval": []interface{}{[]interface{}{"2019-01-02", "2019-02-03"}}},
		},
		CubeDimensions: map[string]interface{}{
			"x": map[string]interface{}{"type": "spatial"},
			"t": map[string]interface{}{"type": "temporal"},
		},
		Summaries: map[string]interface{}{"constellation": []interface{}{"sentinel-2"}},
		Links:     []openeo.Link{},
	}
	doc, err := n.NormalizeCollection(c, openeo.V100, true)
	assert.NoError(t, err)
	assert.Equal(t, "S2_FAPAR_CLOUDCOVER", doc["id"])
	assert.Empty(t, loggedMessages(hook, logrus.WarnLevel))
}

func TestNormalizeCollectionSummaryFiltersFullFields(t *testing.T) {
	n, _ := testNormalizer()
	c := openeo.Collection{
		ID:          "foobar",
		StacVersion: "0.9.0",
		Extent:      map[string]interface{}{"spatial": []interface{}{0, 0, 0, 0}},
		CubeDimensions: map[string]interface{}{
			"x": map[string]interface{}{"type": "spatial"},
		},
		Summaries: map[string]interface{}{"eo:bands": []interface{}{}},
	}
	doc, err := n.NormalizeCollection(c, openeo.V100, false)
	assert.NoError(t, err)
	assert.NotContains(t, doc, "cube:dimensions")
	assert.NotContains(t, doc, "summaries")
	assert.Contains(t, doc, "extent")
}
