// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/diffeo/go-openeo/openeo"
)

// pgCatalog is a container type for an openeo.CollectionCatalog.
// Collections are stored whole, as their canonical documents, and
// only decomposed into records on the way out.
type pgCatalog struct {
	backend *pgBackend
}

// collectionFromBytes decodes a stored document column back into a
// collection record.
func collectionFromBytes(blob []byte) (openeo.Collection, error) {
	doc, err := bytesToMap(blob)
	if err != nil {
		return openeo.Collection{}, err
	}
	return openeo.CollectionFromDocument(doc)
}

// openeo.CollectionCatalog interface:

func (c *pgCatalog) ListCollections() ([]openeo.Collection, error) {
	colls := []openeo.Collection{}
	params := queryParams{}
	query := buildSelect([]string{
		collectionDoc,
	}, []string{
		collectionTable,
	}, []string{})
	query += " ORDER BY " + collectionSeq
	err := queryAndScan(c, query, params, func(rows *sql.Rows) error {
		var blob []byte
		err := rows.Scan(&blob)
		if err != nil {
			return err
		}
		coll, err := collectionFromBytes(blob)
		if err == nil {
			colls = append(colls, coll)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return colls, nil
}

func (c *pgCatalog) GetCollection(id string) (openeo.Collection, error) {
	var (
		coll  openeo.Collection
		found bool
	)
	params := queryParams{}
	query := buildSelect([]string{
		collectionDoc,
	}, []string{
		collectionTable,
	}, []string{
		collectionID + "=" + params.Param(id),
	})
	err := queryAndScan(c, query, params, func(rows *sql.Rows) error {
		var blob []byte
		err := rows.Scan(&blob)
		if err != nil {
			return err
		}
		coll, err = collectionFromBytes(blob)
		found = err == nil
		return err
	})
	if err == nil && !found {
		err = openeo.ErrNoSuchCollection{ID: id}
	}
	if err != nil {
		return openeo.Collection{}, err
	}
	return coll, nil
}

// openeo.CollectionWriter interface:

func (c *pgCatalog) PutCollection(coll openeo.Collection) error {
	if coll.ID == "" {
		return openeo.ErrMissingIdentity{Kind: "collection"}
	}
	blob, err := mapToBytes(coll.Document())
	if err != nil {
		return err
	}
	return withTx(c, false, func(tx *sql.Tx) error {
		// Replace an existing document, insert otherwise
		params := queryParams{}
		changes := []string{"doc=" + params.Param(blob)}
		conditions := []string{collectionID + "=" + params.Param(coll.ID)}
		result, err := tx.Exec(buildUpdate(collectionTable, changes, conditions), params...)
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		if err != nil || count > 0 {
			return err
		}
		params = queryParams{}
		fields := fieldList{}
		fields.Add(&params, "id", coll.ID)
		fields.Add(&params, "doc", blob)
		_, err = tx.Exec(fields.InsertStatement(collectionTable), params...)
		return err
	})
}

// postgres.backendable interface:

func (c *pgCatalog) Backend() *pgBackend {
	return c.backend
}
