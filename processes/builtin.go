// Copyright 2019-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package processes

import (
	"github.com/sirupsen/logrus"
)

var (
	numberOrNull = map[string]interface{}{"type": []interface{}{"number", "null"}}
	numberArray  = map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": []interface{}{"number", "null"}},
	}
	geojson = map[string]interface{}{"type": "object", "format": "geojson"}
)

func mustRegister(b *SpecBuilder, regs ...*Registry) {
	spec, err := b.Spec()
	for _, r := range regs {
		if err == nil {
			err = r.Register(spec)
		}
	}
	if err != nil {
		// Only reachable through a typo in this file.
		panic(err)
	}
}

// Builtin returns both generations' registries preloaded with the
// predefined processes.  Most processes are shared; the reducers were
// reworked for 1.0.0, so "reduce" and "aggregate_polygon" exist only
// pre-1.0 and live on in 1.0.0 as deprecated aliases of their
// replacements.
func Builtin(log *logrus.Logger) Registries {
	pre := NewRegistry(log)
	v1 := NewRegistry(log)
	both := []*Registry{pre, v1}

	mustRegister(NewSpec("load_collection", "Loads a collection from the catalog as a data cube.").
		Param("id", "The collection id", map[string]interface{}{"type": "string"}).
		OptionalParam("spatial_extent", "Spatial filter; null loads the full extent",
			map[string]interface{}{"type": []interface{}{"object", "null"}}).
		OptionalParam("temporal_extent", "Temporal filter; null loads the full extent",
			map[string]interface{}{"type": []interface{}{"array", "null"}}).
		OptionalParam("bands", "Bands to load; null loads all bands", map[string]interface{}{
			"type":  []interface{}{"array", "null"},
			"items": map[string]interface{}{"type": "string"},
		}).
		Returns("A data cube for further processing", RasterCube),
		both...)

	mustRegister(NewSpec("max", "Computes the largest value of an array of numbers.").
		Param("data", "An array of numbers", numberArray).
		Returns("The largest value", numberOrNull),
		both...)

	mustRegister(NewSpec("min", "Computes the smallest value of an array of numbers.").
		Param("data", "An array of numbers", numberArray).
		Returns("The smallest value", numberOrNull),
		both...)

	mustRegister(NewSpec("mean", "Computes the arithmetic mean of an array of numbers.").
		Param("data", "An array of numbers", numberArray).
		Returns("The mean value", numberOrNull),
		both...)

	mustRegister(NewSpec("sin", "Computes the sine of x.").
		Param("x", "An angle in radians.", numberOrNull).
		Returns("The sine of x", numberOrNull),
		both...)

	mustRegister(NewSpec("merge_cubes", "Merges two data cubes into one.").
		Param("cube1", "The first data cube", RasterCube).
		Param("cube2", "The second data cube", RasterCube).
		OptionalParam("overlap_resolver", "Resolver for overlapping values",
			map[string]interface{}{"type": []interface{}{"object", "null"}}).
		Returns("The merged data cube", RasterCube),
		both...)

	mustRegister(NewSpec("mask", "Applies a mask to a data cube.").
		Param("data", "The data cube to mask", RasterCube).
		Param("mask", "The mask cube", RasterCube).
		OptionalParam("replacement", "Value replacing masked pixels; null leaves them empty",
			map[string]interface{}{"type": []interface{}{"number", "boolean", "string", "null"}}).
		Returns("The masked data cube", RasterCube),
		both...)

	mustRegister(NewSpec("histogram", "Sorts an array of numbers into bins and counts the members of each bin.").
		Param("data", "An array of numbers", numberArray).
		Returns("A sequence of (bin, count) pairs", map[string]interface{}{"type": "object"}),
		both...)

	mustRegister(NewSpec("reduce", "Applies a reducer to a data cube dimension.").
		Param("data", "The data cube", RasterCube).
		Param("dimension", "The dimension to reduce over", map[string]interface{}{"type": "string"}).
		OptionalParam("reducer", "The reducer callback",
			map[string]interface{}{"type": "object", "format": "callback"}).
		OptionalParam("binary", "Whether the reducer is binary", map[string]interface{}{"type": "boolean"}).
		Returns("A data cube with the given dimension reduced", RasterCube),
		pre)

	mustRegister(NewSpec("aggregate_polygon", "Aggregates a time series over the pixels covered by polygons.").
		Param("data", "The data cube", RasterCube).
		Param("polygons", "One or more polygons as GeoJSON", geojson).
		Param("reducer", "The reducer callback",
			map[string]interface{}{"type": "object", "format": "callback"}).
		Returns("Aggregated values per polygon and date", map[string]interface{}{"type": "object"}),
		pre)

	mustRegister(NewSpec("reduce_dimension", "Applies a reducer to a data cube dimension.").
		Param("data", "The data cube", RasterCube).
		Param("reducer", "The reducer process graph",
			map[string]interface{}{"type": "object", "format": "process-graph"}).
		Param("dimension", "The dimension to reduce over", map[string]interface{}{"type": "string"}).
		Returns("A data cube with the given dimension reduced", RasterCube),
		v1)

	mustRegister(NewSpec("aggregate_spatial", "Aggregates statistics for geometries over the spatial dimensions.").
		Param("data", "The data cube", RasterCube).
		Param("geometries", "The geometries as GeoJSON", geojson).
		Param("reducer", "The reducer process graph",
			map[string]interface{}{"type": "object", "format": "process-graph"}).
		Returns("Aggregated values per geometry", map[string]interface{}{"type": "object"}),
		v1)

	mustRegister(NewSpec("mask_polygon", "Applies a polygon mask to a data cube.").
		Param("data", "The data cube to mask", RasterCube).
		Param("mask", "The mask polygons as GeoJSON", geojson).
		OptionalParam("replacement", "Value replacing masked pixels; null leaves them empty",
			map[string]interface{}{"type": []interface{}{"number", "boolean", "string", "null"}}).
		Returns("The masked data cube", RasterCube),
		v1)

	mustRegister(NewSpec("add", "Computes the sum of two numbers.").
		Param("x", "The first summand", numberOrNull).
		Param("y", "The second summand", numberOrNull).
		Returns("The computed sum", numberOrNull),
		v1)

	v1.RegisterDeprecated("reduce", "reduce_dimension")
	v1.RegisterDeprecated("aggregate_polygon", "aggregate_spatial")

	return Registries{PreV1: pre, V1: v1}
}
