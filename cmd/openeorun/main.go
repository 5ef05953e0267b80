// Copyright 2016-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package openeorun provides a standalone batch job executor.  It
// polls a back-end's job queue and executes whatever jobs openeod (or
// anything else sharing the same back-end) has queued, without
// serving the REST API itself.  Several of these can run against one
// postgres back-end to spread execution across hosts; with the
// default memory back-end it sees its own private, empty world, which
// is rarely what you want.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/diffeo/go-openeo/backend"
	"github.com/diffeo/go-openeo/runner"
	"github.com/sirupsen/logrus"
)

func main() {
	storage := backend.Backend{Implementation: "memory", Address: ""}
	flag.Var(&storage, "backend", "impl[:address] of the storage backend")
	workers := flag.Int("workers", 0,
		"concurrent batch job executors (0 means one per CPU)")
	poll := flag.Duration("poll", 0,
		"queue poll interval when idle (0 means 1s)")
	flag.Parse()

	backend, err := storage.Create()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not create openEO backend")
		return
	}

	// On SIGINT or SIGTERM, stop claiming new jobs; Run returns
	// once the jobs already claimed have drained.
	ctx, cancel := context.WithCancel(context.Background())
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupted
		cancel()
	}()

	jobs := runner.Runner{
		Backend:      backend,
		Concurrency:  *workers,
		PollInterval: *poll,
		ErrorHandler: func(err error) {
			logrus.WithFields(logrus.Fields{
				"err": err,
			}).Error("Could not claim batch jobs")
		},
	}
	if err := jobs.Run(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not run batch jobs")
	}
}
