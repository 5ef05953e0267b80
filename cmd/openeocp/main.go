// Copyright 2016-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package openeocp copies collection records from one openEO back-end
// to another.  Its main use is seeding a fresh postgres back-end with
// the memory back-end's demo catalog:
//
//     openeocp --from memory --to postgres:dbname=openeo
//
// The destination back-end must support writing collections; records
// already present under the same id are replaced.
package main

import (
	"errors"
	"fmt"

	"github.com/diffeo/go-openeo/backend"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/urfave/cli"
)

func main() {
	from := backend.Backend{Implementation: "memory"}
	to := backend.Backend{Implementation: "memory"}
	app := cli.NewApp()
	app.Usage = "copy collection records between openEO backends"
	app.Flags = []cli.Flag{
		cli.GenericFlag{
			Name:  "from",
			Value: &from,
			Usage: "impl:[address] of source backend",
		},
		cli.GenericFlag{
			Name:  "to",
			Value: &to,
			Usage: "impl:[address] of destination backend",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "do not print copied collection ids",
		},
	}
	app.Action = func(c *cli.Context) error {
		source, err := from.Create()
		if err != nil {
			return err
		}
		dest, err := to.Create()
		if err != nil {
			return err
		}
		writer, ok := dest.Collections().(openeo.CollectionWriter)
		if !ok {
			return errors.New("destination backend does not support writing collections")
		}

		colls, err := source.Collections().ListCollections()
		if err != nil {
			return err
		}
		for _, coll := range colls {
			if err := writer.PutCollection(coll); err != nil {
				return err
			}
			if !c.Bool("quiet") {
				fmt.Println(coll.ID)
			}
		}
		return nil
	}
	app.RunAndExitOnError()
}
