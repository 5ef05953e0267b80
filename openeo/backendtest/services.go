// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backendtest

import (
	"time"

	"github.com/diffeo/go-openeo/openeo"
)

// TestServiceTypes checks the secondary service type table.
func (s *Suite) TestServiceTypes() {
	types := s.Backend.Services().ServiceTypes()

	// Every conforming back-end supports at least WMTS
	if s.Contains(types, "WMTS") {
		wmts := types["WMTS"]
		if s.NotNil(wmts.Configuration) {
			s.Contains(wmts.Configuration, "version")
		}
	}
}

// TestServiceLifecycle creates, reads, updates, and removes one
// secondary service.
func (s *Suite) TestServiceLifecycle() {
	services := s.Backend.Services()

	// The requested type is matched case-insensitively and stored
	// under its canonical name
	service, err := services.CreateService(openeo.ServiceRequest{
		Type:    "wmts",
		Process: testProcess(),
		Title:   "Lifecycle test",
	})
	if !s.NoError(err) {
		return
	}
	s.NotEmpty(service.ID)
	s.Equal("WMTS", service.Type)
	s.NotEmpty(service.URL)
	s.True(service.Enabled)
	s.WithinDuration(s.Clock.Now(), service.Created, 1*time.Millisecond)

	service2, err := services.GetService(service.ID)
	if s.NoError(err) {
		s.Equal(service.ID, service2.ID)
		s.Equal("WMTS", service2.Type)
		s.Equal(testProcess(), service2.Process)
		s.Equal("Lifecycle test", service2.Title)
	}

	// The service appears in the listing
	list, err := services.ListServices()
	if s.NoError(err) {
		var ids []string
		for _, svc := range list {
			ids = append(ids, svc.ID)
		}
		s.Contains(ids, service.ID)
	}

	// Update applies only the fields that are set
	enabled := false
	err = services.UpdateService(service.ID, openeo.ServiceRequest{
		Title:         "Updated title",
		Enabled:       &enabled,
		Configuration: map[string]interface{}{"version": "1.0.0"},
	})
	s.NoError(err)

	service2, err = services.GetService(service.ID)
	if s.NoError(err) {
		s.Equal("Updated title", service2.Title)
		s.False(service2.Enabled)
		s.Equal(map[string]interface{}{"version": "1.0.0"}, service2.Configuration)
		s.Equal(testProcess(), service2.Process)
		s.Equal("WMTS", service2.Type)
	}

	// Remove deletes it
	err = services.RemoveService(service.ID)
	s.NoError(err)

	_, err = services.GetService(service.ID)
	s.Equal(openeo.ErrNoSuchService{ID: service.ID}, err)
}

// TestServiceDisabled checks that a service can be created disabled.
func (s *Suite) TestServiceDisabled() {
	services := s.Backend.Services()

	enabled := false
	service, err := services.CreateService(openeo.ServiceRequest{
		Type:    "WMTS",
		Process: testProcess(),
		Enabled: &enabled,
	})
	if !s.NoError(err) {
		return
	}
	s.False(service.Enabled)

	s.NoError(services.RemoveService(service.ID))
}

// TestServiceUnsupportedType checks that unknown service types are
// rejected.
func (s *Suite) TestServiceUnsupportedType() {
	services := s.Backend.Services()

	_, err := services.CreateService(openeo.ServiceRequest{
		Type:    "PBF",
		Process: testProcess(),
	})
	s.Equal(openeo.ErrServiceUnsupported{Type: "PBF"}, err)
}

// TestNoSuchService checks every operation's missing-service error.
func (s *Suite) TestNoSuchService() {
	services := s.Backend.Services()
	expected := openeo.ErrNoSuchService{ID: "no-such-service"}

	_, err := services.GetService(expected.ID)
	s.Equal(expected, err)

	err = services.UpdateService(expected.ID, openeo.ServiceRequest{Title: "new"})
	s.Equal(expected, err)

	err = services.RemoveService(expected.ID)
	s.Equal(expected, err)
}
