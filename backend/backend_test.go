// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	b := Backend{}
	require.NoError(t, b.Set("memory"))
	assert.Equal(t, "memory", b.Implementation)
	assert.Equal(t, "", b.Address)
	assert.Equal(t, "memory", b.String())

	require.NoError(t, b.Set("postgres:host=localhost dbname=openeo"))
	assert.Equal(t, "postgres", b.Implementation)
	assert.Equal(t, "host=localhost dbname=openeo", b.Address)
	assert.Equal(t, "postgres:host=localhost dbname=openeo", b.String())

	assert.Error(t, b.Set("cassandra:whatever"))
}

func TestCreateMemory(t *testing.T) {
	b := Backend{Implementation: "memory"}
	created, err := b.Create()
	require.NoError(t, err)
	assert.Equal(t, "OK", created.HealthCheck())

	bad := Backend{Implementation: "nope"}
	_, err = bad.Create()
	assert.Error(t, err)
}
