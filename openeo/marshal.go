// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package openeo

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// MarshalText returns a string representing a job status.
func (status JobStatus) MarshalText() ([]byte, error) {
	switch status {
	case JobCreated:
		return []byte("created"), nil
	case JobQueued:
		return []byte("queued"), nil
	case JobRunning:
		return []byte("running"), nil
	case JobCanceled:
		return []byte("canceled"), nil
	case JobFinished:
		return []byte("finished"), nil
	case JobError:
		return []byte("error"), nil
	default:
		return nil, fmt.Errorf("invalid job status (marshal, %+v)", int(status))
	}
}

// UnmarshalText populates a job status from a string.
func (status *JobStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "created":
		*status = JobCreated
	case "queued":
		*status = JobQueued
	case "running":
		*status = JobRunning
	case "canceled":
		*status = JobCanceled
	case "finished":
		*status = JobFinished
	case "error":
		*status = JobError
	default:
		return fmt.Errorf("invalid job status (unmarshal, %+v)", string(text))
	}
	return nil
}

func (status JobStatus) String() string {
	text, err := status.MarshalText()
	if err != nil {
		return fmt.Sprintf("JobStatus(%d)", int(status))
	}
	return string(text)
}

// CollectionFromDocument decodes a canonical collection document into
// a Collection record.  Keys that do not correspond to well-known
// fields are preserved in Extra, so a round trip through Document()
// loses nothing.
func CollectionFromDocument(doc map[string]interface{}) (Collection, error) {
	var c Collection
	var md mapstructure.Metadata
	config := mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   &c,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(doc)
	}
	if err != nil {
		return Collection{}, err
	}
	for _, key := range md.Unused {
		if c.Extra == nil {
			c.Extra = make(map[string]interface{})
		}
		c.Extra[key] = doc[key]
	}
	return c, nil
}

// Document renders a Collection back into its canonical document
// shape.  Zero-valued fields are omitted rather than emitted as nulls,
// but a non-nil empty map or links slice is emitted: a record can
// declare an explicitly empty "summaries" object, which suppresses the
// missing-field fallback in the wire layer.  Extra keys, including
// private "_"-prefixed ones, are carried through; it is the wire
// layer's job to strip them.
func (c Collection) Document() map[string]interface{} {
	doc := make(map[string]interface{})
	for key, value := range c.Extra {
		doc[key] = value
	}
	if c.ID != "" {
		doc["id"] = c.ID
	}
	if c.Title != "" {
		doc["title"] = c.Title
	}
	if c.Description != "" {
		doc["description"] = c.Description
	}
	if c.License != "" {
		doc["license"] = c.License
	}
	if len(c.Keywords) > 0 {
		doc["keywords"] = c.Keywords
	}
	if c.Version != "" {
		doc["version"] = c.Version
	}
	if c.StacVersion != "" {
		doc["stac_version"] = c.StacVersion
	}
	if len(c.StacExtensions) > 0 {
		doc["stac_extensions"] = c.StacExtensions
	}
	if len(c.Providers) > 0 {
		doc["providers"] = c.Providers
	}
	if c.Extent != nil {
		doc["extent"] = c.Extent
	}
	if c.CubeDimensions != nil {
		doc["cube:dimensions"] = c.CubeDimensions
	}
	if c.Summaries != nil {
		doc["summaries"] = c.Summaries
	}
	if c.Properties != nil {
		doc["properties"] = c.Properties
	}
	if c.OtherProperties != nil {
		doc["other_properties"] = c.OtherProperties
	}
	if c.Links != nil {
		doc["links"] = c.Links
	}
	return doc
}
