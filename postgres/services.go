// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"
	"strings"
	"time"

	"github.com/satori/go.uuid"

	"github.com/diffeo/go-openeo/openeo"
)

// pgServices is a container type for an openeo.SecondaryServices.
// Service instances are rows; the service type table is fixed in
// code, since instantiating a type is backend code anyway.
type pgServices struct {
	backend *pgBackend
}

// serviceTypes returns the secondary service type table.
func serviceTypes() map[string]openeo.ServiceType {
	return map[string]openeo.ServiceType{
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
	}
}

// matchServiceType resolves a requested service type name against the
// type table, case-insensitively, returning the canonical name.
func matchServiceType(name string) (string, bool) {
	for typeName := range serviceTypes() {
		if strings.EqualFold(typeName, name) {
			return typeName, true
		}
	}
	return "", false
}

// serviceOutputs lists the columns serviceFromRow() scans, in order.
func serviceOutputs() []string {
	return []string{
		serviceID,
		serviceType,
		serviceURL,
		serviceEnabled,
		serviceProcess,
		serviceConfiguration,
		serviceAttributes,
		serviceTitle,
		serviceDescription,
		servicePlan,
		serviceBudget,
		serviceCosts,
		serviceCreated,
	}
}

// serviceFromRow scans one row holding the serviceOutputs() columns
// into a service record.
func serviceFromRow(rows *sql.Rows) (openeo.Service, error) {
	var (
		service            openeo.Service
		processBytes       []byte
		configurationBytes []byte
		attributesBytes    []byte
		budget             sql.NullFloat64
		costs              sql.NullFloat64
		created            time.Time
	)
	err := rows.Scan(&service.ID, &service.Type, &service.URL,
		&service.Enabled, &processBytes, &configurationBytes,
		&attributesBytes, &service.Title, &service.Description,
		&service.Plan, &budget, &costs, &created)
	if err != nil {
		return openeo.Service{}, err
	}
	service.Process, err = bytesToMap(processBytes)
	if err == nil {
		service.Configuration, err = bytesToMap(configurationBytes)
	}
	if err == nil {
		service.Attributes, err = bytesToMap(attributesBytes)
	}
	if err != nil {
		return openeo.Service{}, err
	}
	service.Budget = nullFloatToFloat(budget)
	service.Costs = nullFloatToFloat(costs)
	service.Created = created.UTC()
	return service, nil
}

// openeo.SecondaryServices interface:

func (s *pgServices) ServiceTypes() map[string]openeo.ServiceType {
	return serviceTypes()
}

func (s *pgServices) CreateService(req openeo.ServiceRequest) (openeo.Service, error) {
	typeName, supported := matchServiceType(req.Type)
	if !supported {
		return openeo.Service{}, openeo.ErrServiceUnsupported{Type: req.Type}
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	id := uuid.NewV4().String()
	service := openeo.Service{
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
	processBytes, err := mapToBytes(service.Process)
	if err != nil {
		return openeo.Service{}, err
	}
	configurationBytes, err := mapToBytes(service.Configuration)
	if err != nil {
		return openeo.Service{}, err
	}
	attributesBytes, err := mapToBytes(service.Attributes)
	if err != nil {
		return openeo.Service{}, err
	}
	params := queryParams{}
	fields := fieldList{}
	fields.Add(&params, "id", service.ID)
	fields.Add(&params, "type", service.Type)
	fields.Add(&params, "url", service.URL)
	fields.Add(&params, "enabled", service.Enabled)
	fields.Add(&params, "process", processBytes)
	fields.Add(&params, "configuration", configurationBytes)
	fields.Add(&params, "attributes", attributesBytes)
	fields.Add(&params, "title", service.Title)
	fields.Add(&params, "description", service.Description)
	fields.Add(&params, "plan", service.Plan)
	fields.Add(&params, "budget", floatToNullFloat(service.Budget))
	fields.Add(&params, "created", service.Created)
	err = execInTx(s, fields.InsertStatement(serviceTable), params)
	if err != nil {
		return openeo.Service{}, err
	}
	return service, nil
}

func (s *pgServices) GetService(id string) (openeo.Service, error) {
	var (
		service openeo.Service
		found   bool
	)
	params := queryParams{}
	query := buildSelect(serviceOutputs(), []string{serviceTable}, []string{
		serviceID + "=" + params.Param(id),
	})
	err := queryAndScan(s, query, params, func(rows *sql.Rows) error {
		var err error
		service, err = serviceFromRow(rows)
		found = err == nil
		return err
	})
	if err == nil && !found {
		err = openeo.ErrNoSuchService{ID: id}
	}
	if err != nil {
		return openeo.Service{}, err
	}
	return service, nil
}

func (s *pgServices) ListServices() ([]openeo.Service, error) {
	services := []openeo.Service{}
	params := queryParams{}
	query := buildSelect(serviceOutputs(), []string{serviceTable}, []string{})
	query += " ORDER BY " + serviceSeq
	err := queryAndScan(s, query, params, func(rows *sql.Rows) error {
		service, err := serviceFromRow(rows)
		if err == nil {
			services = append(services, service)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (s *pgServices) UpdateService(id string, req openeo.ServiceRequest) error {
	return withTx(s, false, func(tx *sql.Tx) error {
		params := queryParams{}
		query := buildSelect(serviceOutputs(), []string{serviceTable}, []string{
			serviceID + "=" + params.Param(id),
		})
		rows, err := tx.Query(query, params...)
		if err != nil {
			return err
		}
		var (
			service openeo.Service
			found   bool
		)
		err = scanRows(rows, func() error {
			var err error
			service, err = serviceFromRow(rows)
			found = err == nil
			return err
		})
		if err != nil {
			return err
		}
		if !found {
			return openeo.ErrNoSuchService{ID: id}
		}
		// Only the fields the request carries change
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
		processBytes, err := mapToBytes(service.Process)
		if err != nil {
			return err
		}
		configurationBytes, err := mapToBytes(service.Configuration)
		if err != nil {
			return err
		}
		params = queryParams{}
		fields := fieldList{}
		fields.Add(&params, "process", processBytes)
		fields.Add(&params, "title", service.Title)
		fields.Add(&params, "description", service.Description)
		fields.Add(&params, "enabled", service.Enabled)
		fields.Add(&params, "configuration", configurationBytes)
		fields.Add(&params, "plan", service.Plan)
		fields.Add(&params, "budget", floatToNullFloat(service.Budget))
		conditions := []string{serviceID + "=" + params.Param(id)}
		_, err = tx.Exec(buildUpdate(serviceTable, fields.UpdateChanges(), conditions), params...)
		return err
	})
}

func (s *pgServices) RemoveService(id string) error {
	return withTx(s, false, func(tx *sql.Tx) error {
		params := queryParams{}
		query := "DELETE FROM " + serviceTable +
			" WHERE " + serviceID + "=" + params.Param(id)
		result, err := tx.Exec(query, params...)
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		if err == nil && count == 0 {
			err = openeo.ErrNoSuchService{ID: id}
		}
		return err
	})
}

// postgres.backendable interface:

func (s *pgServices) Backend() *pgBackend {
	return s.backend
}
