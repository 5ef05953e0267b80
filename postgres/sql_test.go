// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type connectionString struct {
	In  string
	Out string
}

var someConnectionStrings = []connectionString{
	{"", "default_transaction_isolation='repeatable read'"},
	{"host=localhost dbname=openeo",
		"host=localhost dbname=openeo default_transaction_isolation='repeatable read'"},
	{"//postgres@localhost/openeo",
		"postgres://postgres@localhost/openeo?default_transaction_isolation=repeatable%20read"},
	{"postgres://localhost/openeo",
		"postgres://localhost/openeo?default_transaction_isolation=repeatable%20read"},
	{"postgres://localhost/openeo?sslmode=disable",
		"postgres://localhost/openeo?sslmode=disable&default_transaction_isolation=repeatable%20read"},
}

func TestNormalizeConnectionString(t *testing.T) {
	for _, cs := range someConnectionStrings {
		assert.Equal(t, cs.Out, normalizeConnectionString(cs.In), cs.In)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := map[string]interface{}{
		"process_graph": map[string]interface{}{
			"loadco1": map[string]interface{}{
				"process_id": "load_collection",
				"arguments": map[string]interface{}{
					"id": "S2_FOOBAR",
				},
			},
		},
	}
	blob, err := mapToBytes(doc)
	if assert.NoError(t, err) {
		out, err := bytesToMap(blob)
		if assert.NoError(t, err) {
			assert.Equal(t, doc, out)
		}
	}
}

func TestNilDocumentRoundTrip(t *testing.T) {
	// A nil map must survive storage as-is: an absent options or
	// configuration document stays absent, not empty
	blob, err := mapToBytes(nil)
	if assert.NoError(t, err) {
		out, err := bytesToMap(blob)
		if assert.NoError(t, err) {
			assert.Nil(t, out)
		}
	}
}

func TestBuildSelect(t *testing.T) {
	assert.Equal(t, "SELECT job.id FROM job",
		buildSelect([]string{jobID}, []string{jobTable}, []string{}))
	assert.Equal(t, "SELECT job.id, job.status FROM job WHERE job.owner=$1",
		buildSelect([]string{jobID, jobStatus},
			[]string{jobTable},
			[]string{jobOwner + "=$1"}))
}

func TestBuildUpdate(t *testing.T) {
	assert.Equal(t, "UPDATE job SET status=$1 WHERE job.id=$2",
		buildUpdate(jobTable, []string{"status=$1"}, []string{jobID + "=$2"}))
}

func TestQueryParams(t *testing.T) {
	params := queryParams{}
	assert.Equal(t, "$1", params.Param("first"))
	assert.Equal(t, "$2", params.Param(17))
	assert.Equal(t, queryParams{"first", 17}, params)
}

func TestFieldList(t *testing.T) {
	params := queryParams{}
	fields := fieldList{}
	fields.Add(&params, "id", "a-job")
	fields.Add(&params, "status", "queued")
	fields.AddDirect("updated", "NOW()")
	assert.Equal(t, "INSERT INTO job(id, status, updated) VALUES($1, $2, NOW())",
		fields.InsertStatement(jobTable))
	assert.Equal(t, []string{"id=$1", "status=$2", "updated=NOW()"},
		fields.UpdateChanges())
	assert.Equal(t, queryParams{"a-job", "queued"}, params)
}
