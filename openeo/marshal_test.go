// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package openeo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusText(t *testing.T) {
	tests := []struct {
		status JobStatus
		text   string
	}{
		{JobCreated, "created"},
		{JobQueued, "queued"},
		{JobRunning, "running"},
		{JobCanceled, "canceled"},
		{JobFinished, "finished"},
		{JobError, "error"},
	}
	for _, test := range tests {
		text, err := test.status.MarshalText()
		if assert.NoError(t, err) {
			assert.Equal(t, test.text, string(text))
		}
		assert.Equal(t, test.text, test.status.String())

		var status JobStatus
		if assert.NoError(t, status.UnmarshalText([]byte(test.text))) {
			assert.Equal(t, test.status, status)
		}
	}

	_, err := JobStatus(99).MarshalText()
	assert.Error(t, err)
	var status JobStatus
	assert.Error(t, status.UnmarshalText([]byte("submitted")))
}

// TestCollectionRoundTrip checks that a document survives
// CollectionFromDocument followed by Document unchanged, with unknown
// keys routed through Extra.
func TestCollectionRoundTrip(t *testing.T) {
	doc := map[string]interface{}{
		"id":          "S2_FOOBAR",
		"title":       "Foobar",
		"description": "Simple fake collection",
		"license":     "free",
		"extent": map[string]interface{}{
			"spatial": []interface{}{2.5, 49.5, 6.2, 51.5},
		},
		"cube:dimensions": map[string]interface{}{
			"x": map[string]interface{}{"type": "spatial"},
		},
		"summaries": map[string]interface{}{
			"eo:bands": []interface{}{
				map[string]interface{}{"name": "B02", "common_name": "blue"},
			},
		},
		"_private":  map[string]interface{}{"password": "dragon"},
		"vendor:xy": 42,
	}

	c, err := CollectionFromDocument(doc)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "S2_FOOBAR", c.ID)
	assert.Equal(t, "free", c.License)
	assert.Contains(t, c.CubeDimensions, "x")
	assert.Equal(t, map[string]interface{}{"password": "dragon"}, c.Extra["_private"])
	assert.Equal(t, 42, c.Extra["vendor:xy"])

	back := c.Document()
	assert.Equal(t, doc, back)
}

func TestCollectionFromDocumentEmpty(t *testing.T) {
	c, err := CollectionFromDocument(map[string]interface{}{})
	if assert.NoError(t, err) {
		assert.Equal(t, Collection{}, c)
	}
}

// TestCollectionDocumentOmitsZeroFields checks the no-null contract:
// absent fields stay absent rather than appearing with empty values.
func TestCollectionDocumentOmitsZeroFields(t *testing.T) {
	doc := Collection{ID: "foobar"}.Document()
	assert.Equal(t, map[string]interface{}{"id": "foobar"}, doc)
}

// A record declaring "summaries": {} is distinct from one without
// summaries at all; the empty object must survive the round trip so
// the wire layer does not treat the field as missing.
func TestCollectionDocumentKeepsEmptyMaps(t *testing.T) {
	doc := Collection{
		ID:        "foobar",
		Summaries: map[string]interface{}{},
		Links:     []Link{},
	}.Document()
	assert.Equal(t, map[string]interface{}{
		"id":        "foobar",
		"summaries": map[string]interface{}{},
		"links":     []Link{},
	}, doc)
}
