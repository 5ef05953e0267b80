// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"strings"
	"time"

	"github.com/satori/go.uuid"

	"github.com/diffeo/go-openeo/openeo"
)

// memServices is a container type for an openeo.SecondaryServices.
type memServices struct {
	backend  *memBackend
	types    map[string]openeo.ServiceType
	services map[string]openeo.Service
	order    []string
}

func newServices(backend *memBackend) *memServices {
	s := &memServices{
		backend: backend,
		types: map[string]openeo.ServiceType{
			"WMTS": {
				Configuration: map[string]interface{}{
					"version": map[string]interface{}{
						"type":        "string",
						"description": "The WMTS version to use.",
						"default":     "1.0.0",
						"enum":        []interface{}{"1.0.0"},
					},
				},
				ProcessParameters: []map[string]interface{}{},
				Links:             []openeo.Link{},
			},
		},
		services: make(map[string]openeo.Service),
	}
	fixture := openeo.Service{
		ID:         "wmts-foo",
		Type:       "WMTS",
		URL:        "https://oeo.net/wmts/foo",
		Enabled:    true,
		Process:    fixtureProcess(),
		Attributes: map[string]interface{}{},
		Title:      "Test service",
		Created:    time.Date(2020, 4, 9, 15, 5, 8, 0, time.UTC),
	}
	s.services[fixture.ID] = fixture
	s.order = append(s.order, fixture.ID)
	return s
}

// openeo.SecondaryServices interface:

func (s *memServices) ServiceTypes() map[string]openeo.ServiceType {
	globalLock(s)
	defer globalUnlock(s)

	types := make(map[string]openeo.ServiceType, len(s.types))
	for name, st := range s.types {
		types[name] = st
	}
	return types
}

func (s *memServices) CreateService(req openeo.ServiceRequest) (service openeo.Service, err error) {
	globalLock(s)
	defer globalUnlock(s)

	typeName, supported := s.matchType(req.Type)
	if !supported {
		return openeo.Service{}, openeo.ErrServiceUnsupported{Type: req.Type}
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	id := uuid.NewV4().String()
	service = openeo.Service{
		ID:            id,
		Type:          typeName,
		URL:           "https://oeo.net/services/" + id,
		Enabled:       enabled,
		Process:       req.Process,
		Configuration: req.Configuration,
		Attributes:    map[string]interface{}{},
		Title:         req.Title,
		Description:   req.Description,
		Plan:          req.Plan,
		Budget:        req.Budget,
		Created:       s.backend.clock.Now().UTC(),
	}
	s.services[id] = service
	s.order = append(s.order, id)
	return service, nil
}

// matchType resolves a requested service type name against the type
// table, case-insensitively, returning the canonical name.  It
// expects to run within the global lock.
func (s *memServices) matchType(name string) (string, bool) {
	for typeName := range s.types {
		if strings.EqualFold(typeName, name) {
			return typeName, true
		}
	}
	return "", false
}

func (s *memServices) GetService(id string) (service openeo.Service, err error) {
	globalLock(s)
	defer globalUnlock(s)

	service, present := s.services[id]
	if !present {
		return openeo.Service{}, openeo.ErrNoSuchService{ID: id}
	}
	return service, nil
}

func (s *memServices) ListServices() (services []openeo.Service, err error) {
	globalLock(s)
	defer globalUnlock(s)

	services = make([]openeo.Service, 0, len(s.order))
	for _, id := range s.order {
		services = append(services, s.services[id])
	}
	return services, nil
}

func (s *memServices) UpdateService(id string, req openeo.ServiceRequest) error {
	globalLock(s)
	defer globalUnlock(s)

	service, present := s.services[id]
	if !present {
		return openeo.ErrNoSuchService{ID: id}
	}
	if req.Process != nil {
		service.Process = req.Process
	}
	if req.Title != "" {
		service.Title = req.Title
	}
	if req.Description != "" {
		service.Description = req.Description
	}
	if req.Enabled != nil {
		service.Enabled = *req.Enabled
	}
	if req.Configuration != nil {
		service.Configuration = req.Configuration
	}
	if req.Plan != "" {
		service.Plan = req.Plan
	}
	if req.Budget != nil {
		service.Budget = req.Budget
	}
	s.services[id] = service
	return nil
}

func (s *memServices) RemoveService(id string) error {
	globalLock(s)
	defer globalUnlock(s)

	if _, present := s.services[id]; !present {
		return openeo.ErrNoSuchService{ID: id}
	}
	delete(s.services, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// memory.lockable interface:

func (s *memServices) Backend() *memBackend {
	return s.backend
}
