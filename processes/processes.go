// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package processes defines process specifications and the registry
// that serves them over the REST API.
//
// A process specification has one canonical in-memory form, Spec, and
// two wire forms.  Protocol generations before 1.0.0 serialize the
// parameters as a mapping keyed by parameter name next to a separate
// "parameter_order" array, and flag optionality with a "required"
// boolean.  1.0.0 and later serialize the parameters as an array of
// objects, each carrying its own "name" and an "optional" boolean.
// Spec.Wire() produces whichever shape the resolved version calls
// for; parameter order and optionality are identical across the two.
package processes

import (
	"fmt"

	"github.com/diffeo/go-openeo/openeo"
)

// RasterCube is the parameter schema marking a datacube input or
// output.  The plain JSON-schema vocabulary the wire format uses
// cannot distinguish a cube from a generic object, so this sentinel
// carries the distinction in its "format" field.
var RasterCube = map[string]interface{}{
	"type":   "object",
	"format": "raster-cube",
}

// Parameter is a single named process parameter.  Parameters are
// kept in declaration order; the order is part of the process
// contract and survives into both wire shapes.
type Parameter struct {
	Name        string
	Description string
	Schema      interface{}
	Required    bool
}

// ReturnValue describes what a process produces.
type ReturnValue struct {
	Description string
	Schema      interface{}
}

// Spec is the canonical form of one process specification.
type Spec struct {
	ID          string
	Description string
	Parameters  []Parameter

	// Returns must be set before the spec can be rendered; a
	// process without a declared return value is incomplete.
	Returns *ReturnValue
}

// Wire renders the spec into the shape the resolved version expects.
// It returns openeo.ErrIncompleteProcessSpec when no return value has
// been declared.
func (s Spec) Wire(v openeo.Version) (map[string]interface{}, error) {
	if s.Returns == nil {
		return nil, openeo.ErrIncompleteProcessSpec{ID: s.ID}
	}
	doc := map[string]interface{}{
		"id":          s.ID,
		"description": s.Description,
		"returns": map[string]interface{}{
			"description": s.Returns.Description,
			"schema":      s.Returns.Schema,
		},
	}
	if v.AtLeast(openeo.V100) {
		params := make([]interface{}, 0, len(s.Parameters))
		for _, p := range s.Parameters {
			params = append(params, map[string]interface{}{
				"name":        p.Name,
				"description": p.Description,
				"optional":    !p.Required,
				"schema":      p.Schema,
			})
		}
		doc["parameters"] = params
	} else {
		params := make(map[string]interface{}, len(s.Parameters))
		order := make([]string, 0, len(s.Parameters))
		for _, p := range s.Parameters {
			params[p.Name] = map[string]interface{}{
				"description": p.Description,
				"required":    p.Required,
				"schema":      p.Schema,
			}
			order = append(order, p.Name)
		}
		doc["parameters"] = params
		doc["parameter_order"] = order
	}
	return doc, nil
}

// SpecBuilder assembles a Spec through chained calls.  Build errors
// accumulate in the Error field; the first error stops all further
// work, so callers only need to check once at the end.
type SpecBuilder struct {
	spec  Spec
	names map[string]struct{}

	Error error
}

// NewSpec starts building a process specification.
func NewSpec(id, description string) *SpecBuilder {
	b := &SpecBuilder{
		spec:  Spec{ID: id, Description: description},
		names: make(map[string]struct{}),
	}
	if id == "" {
		b.Error = fmt.Errorf("Process spec with empty id")
	}
	return b
}

func (b *SpecBuilder) param(p Parameter) *SpecBuilder {
	if b.Error == nil {
		if _, dup := b.names[p.Name]; dup {
			b.Error = fmt.Errorf("Process %q declares parameter %q twice", b.spec.ID, p.Name)
		}
	}
	if b.Error == nil {
		b.names[p.Name] = struct{}{}
		b.spec.Parameters = append(b.spec.Parameters, p)
	}
	return b
}

// Param declares a required parameter.
func (b *SpecBuilder) Param(name, description string, schema interface{}) *SpecBuilder {
	return b.param(Parameter{Name: name, Description: description, Schema: schema, Required: true})
}

// OptionalParam declares an optional parameter.
func (b *SpecBuilder) OptionalParam(name, description string, schema interface{}) *SpecBuilder {
	return b.param(Parameter{Name: name, Description: description, Schema: schema})
}

// Returns declares the process's return value.
func (b *SpecBuilder) Returns(description string, schema interface{}) *SpecBuilder {
	if b.Error == nil && b.spec.Returns != nil {
		b.Error = fmt.Errorf("Process %q declares its return value twice", b.spec.ID)
	}
	if b.Error == nil {
		b.spec.Returns = &ReturnValue{Description: description, Schema: schema}
	}
	return b
}

// Spec returns the assembled specification, or the first error the
// chain hit.
func (b *SpecBuilder) Spec() (Spec, error) {
	if b.Error != nil {
		return Spec{}, b.Error
	}
	return b.spec, nil
}
