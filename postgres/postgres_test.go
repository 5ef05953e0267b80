// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres_test

import (
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/diffeo/go-openeo/openeo/backendtest"
	"github.com/diffeo/go-openeo/postgres"
)

// Suite is the generic backend test suite, run against a live
// PostgreSQL database.
type Suite struct {
	backendtest.Suite
	DSN string
}

// SetupSuite resets the database to an empty schema and builds the
// backend under test on top of it.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()

	db, err := sql.Open("postgres", s.DSN)
	if err == nil {
		err = postgres.Drop(db)
	}
	if err == nil {
		err = db.Close()
	}
	s.Require().NoError(err)

	backend, err := postgres.NewWithClock(s.DSN, s.Clock)
	s.Require().NoError(err)
	s.Backend = backend
	s.User = "alice"
	s.Password = "alice123"
}

// TestBackend runs the Backend generic tests against a PostgreSQL
// database named by the OPENEO_TEST_POSTGRES environment variable.
// The variable holds a libpq connection string; an empty value falls
// back on the standard PG* environment variables, and leaving the
// variable unset skips these tests entirely.  Whatever database it
// names is dropped and recreated.
func TestBackend(t *testing.T) {
	dsn, configured := os.LookupEnv("OPENEO_TEST_POSTGRES")
	if !configured {
		t.Skip("set OPENEO_TEST_POSTGRES to run PostgreSQL tests")
	}
	suite.Run(t, &Suite{DSN: dsn})
}
