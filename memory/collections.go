// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-openeo/openeo"
)

// memCatalog is a container type for an openeo.CollectionCatalog.
type memCatalog struct {
	backend     *memBackend
	collections map[string]openeo.Collection
	order       []string
}

func newCatalog(backend *memBackend) *memCatalog {
	c := &memCatalog{
		backend:     backend,
		collections: make(map[string]openeo.Collection),
	}
	for _, fixture := range fixtureCollections() {
		c.collections[fixture.ID] = fixture
		c.order = append(c.order, fixture.ID)
	}
	return c
}

// fixtureCollections returns the collection records the backend is
// prepopulated with.  They intentionally span the metadata quality
// range: one complete record, one complete record with bands and a
// private field, and one bare-bones record that exercises the wire
// layer's fallbacks.
func fixtureCollections() []openeo.Collection {
	return []openeo.Collection{
		{
			ID:          "S2_FAPAR_CLOUDCOVER",
			Description: "fraction of the solar radiation absorbed by live leaves for the photosynthesis activity",
			License:     "free",
			Extent: map[string]interface{}{
				"spatial":  []interface{}{-180, -90, 180, 90},
				"temporal": []interface{}{"2019-01-02", "2019-02-03"},
			},
			CubeDimensions: map[string]interface{}{
				"x": map[string]interface{}{"type": "spatial"},
				"y": map[string]interface{}{"type": "spatial"},
				"t": map[string]interface{}{"type": "temporal"},
			},
			Summaries: map[string]interface{}{},
			Links:     []openeo.Link{},
			Extra: map[string]interface{}{
				"product_id": "S2_FAPAR_CLOUDCOVER",
				"name":       "S2_FAPAR_CLOUDCOVER",
			},
		},
		{
			ID:      "S2_FOOBAR",
			License: "free",
			Extent: map[string]interface{}{
				"spatial":  []interface{}{2.5, 49.5, 6.2, 51.5},
				"temporal": []interface{}{"2019-01-01", nil},
			},
			CubeDimensions: map[string]interface{}{
				"x": map[string]interface{}{"type": "spatial"},
				"y": map[string]interface{}{"type": "spatial"},
				"t": map[string]interface{}{"type": "temporal"},
				"bands": map[string]interface{}{
					"type":   "bands",
					"values": []interface{}{"B02", "B03", "B04", "B08"},
				},
			},
			Summaries: map[string]interface{}{
				"eo:bands": []interface{}{
					map[string]interface{}{"name": "B02", "common_name": "blue"},
					map[string]interface{}{"name": "B03", "common_name": "green"},
					map[string]interface{}{"name": "B04", "common_name": "red"},
					map[string]interface{}{"name": "B08", "common_name": "nir"},
				},
			},
			Links: []openeo.Link{},
			Extra: map[string]interface{}{
				"_private": map[string]interface{}{"password": "dragon"},
			},
		},
		{
			ID: "PROBAV_L3_S10_TOC_NDVI_333M_V2",
			CubeDimensions: map[string]interface{}{
				"x": map[string]interface{}{"type": "spatial"},
				"y": map[string]interface{}{"type": "spatial"},
				"t": map[string]interface{}{"type": "temporal"},
			},
		},
	}
}

// openeo.CollectionCatalog interface:

func (c *memCatalog) ListCollections() (colls []openeo.Collection, err error) {
	globalLock(c)
	defer globalUnlock(c)

	colls = make([]openeo.Collection, 0, len(c.order))
	for _, id := range c.order {
		colls = append(colls, c.collections[id])
	}
	return colls, nil
}

func (c *memCatalog) GetCollection(id string) (coll openeo.Collection, err error) {
	globalLock(c)
	defer globalUnlock(c)

	coll, present := c.collections[id]
	if !present {
		return openeo.Collection{}, openeo.ErrNoSuchCollection{ID: id}
	}
	return coll, nil
}

// openeo.CollectionWriter interface:

func (c *memCatalog) PutCollection(coll openeo.Collection) error {
	globalLock(c)
	defer globalUnlock(c)

	if coll.ID == "" {
		return openeo.ErrMissingIdentity{Kind: "collection"}
	}
	if _, present := c.collections[coll.ID]; !present {
		c.order = append(c.order, coll.ID)
	}
	c.collections[coll.ID] = coll
	return nil
}

// memory.lockable interface:

func (c *memCatalog) Backend() *memBackend {
	return c.backend
}
