// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backendtest provides generic functional tests for the
// Backend interface.  A typical backend test module needs to wrap
// Suite to create its backend:
//
//     package mybackend
//
//     import (
//             "testing"
//
//             "github.com/diffeo/go-openeo/openeo/backendtest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     // Suite is the per-backend generic test suite.
//     type Suite struct {
//             backendtest.Suite
//     }
//
//     // SetupSuite does global setup for the test suite.
//     func (s *Suite) SetupSuite() {
//             s.Suite.SetupSuite()
//             s.Backend = NewWithClock(s.Clock)
//             s.User = "alice"
//             s.Password = "alice123"
//     }
//
//     // TestBackend runs the Backend generic tests.
//     func TestBackend(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
//
// All of the tests share one backend.  Tests that create jobs use a
// per-test user name and delete what they created, so that they do
// not interfere with each other or with whatever fixture data the
// backend starts with.
package backendtest

import (
	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/stretchr/testify/suite"
)

// Suite is the generic Backend test suite.
type Suite struct {
	suite.Suite

	// Clock contains the alternate time source to be used in tests.  It
	// is pre-initialized to a mock clock.
	Clock *clock.Mock

	// Backend contains the top-level interface to the back-end under
	// test.  It is set by importing packages.
	Backend openeo.Backend

	// User and Password hold a credential pair the back-end's
	// authenticator accepts.  They are set by importing packages.
	User     string
	Password string
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	s.Clock = clock.NewMock()
}

// JobStatus checks that a job has an expected status.
func (s *Suite) JobStatus(expected openeo.JobStatus, user, id string) {
	job, err := s.Backend.Jobs().GetJob(user, id)
	if s.NoError(err) {
		s.Equal(expected, job.Status)
	}
}

// testProcess returns a minimal process document.
func testProcess() map[string]interface{} {
	return map[string]interface{}{
		"process_graph": map[string]interface{}{
			"foo": map[string]interface{}{
				"process_id": "foo",
				"arguments":  map[string]interface{}{},
			},
		},
	}
}
