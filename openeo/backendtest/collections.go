// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backendtest

import (
	"github.com/diffeo/go-openeo/openeo"
)

// TestCollectionCatalog does a basic list-and-get round trip against
// whatever the catalog holds.
func (s *Suite) TestCollectionCatalog() {
	catalog := s.Backend.Collections()

	colls, err := catalog.ListCollections()
	if !s.NoError(err) {
		return
	}
	for _, coll := range colls {
		s.NotEmpty(coll.ID)
	}

	// Every listed collection can be fetched back by id
	for _, coll := range colls {
		got, err := catalog.GetCollection(coll.ID)
		if s.NoError(err) {
			s.Equal(coll.ID, got.ID)
		}
	}
}

// TestNoSuchCollection checks the missing-collection error.
func (s *Suite) TestNoSuchCollection() {
	_, err := s.Backend.Collections().GetCollection("NO_SUCH_COLLECTION")
	s.Equal(openeo.ErrNoSuchCollection{ID: "NO_SUCH_COLLECTION"}, err)
}

// TestPutCollection checks write access, on catalogs that support it.
func (s *Suite) TestPutCollection() {
	catalog := s.Backend.Collections()
	writer, ok := catalog.(openeo.CollectionWriter)
	if !ok {
		s.T().Skip("collection catalog is read-only")
	}

	coll := openeo.Collection{
		ID:          "TestPutCollection",
		Title:       "Put test",
		Description: "record created by the generic backend tests",
		License:     "proprietary",
		Extent: map[string]interface{}{
			"spatial":  []interface{}{0.0, 0.0, 1.0, 1.0},
			"temporal": []interface{}{"2020-01-01", nil},
		},
	}
	err := writer.PutCollection(coll)
	s.NoError(err)

	got, err := catalog.GetCollection(coll.ID)
	if s.NoError(err) {
		s.Equal(coll.Title, got.Title)
		s.Equal(coll.License, got.License)
	}

	// Storing the same id again replaces the record
	coll.Title = "Replaced title"
	err = writer.PutCollection(coll)
	s.NoError(err)

	got, err = catalog.GetCollection(coll.ID)
	if s.NoError(err) {
		s.Equal("Replaced title", got.Title)
	}

	// The replaced record appears exactly once in the listing
	colls, err := catalog.ListCollections()
	if s.NoError(err) {
		count := 0
		for _, c := range colls {
			if c.ID == coll.ID {
				count++
			}
		}
		s.Equal(1, count)
	}

	// A collection without an id cannot be stored at all
	err = writer.PutCollection(openeo.Collection{Title: "anonymous"})
	s.Equal(openeo.ErrMissingIdentity{Kind: "collection"}, err)
}
