// Copyright 2015-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package openeod provides a multi-version openEO API server daemon.
// It speaks both the 0.4.x and 1.0.x generations of the openEO
// protocol described at https://api.openeo.org/ from a single
// process, backed by a pluggable storage back-end.  By default it
// also executes queued batch jobs in-process; pass -run-jobs=false to
// leave execution to a separate process sharing the same back-end.
package main

import (
	"context"
	"flag"
	"io/ioutil"

	"github.com/diffeo/go-openeo/backend"
	"github.com/diffeo/go-openeo/cache"
	"github.com/diffeo/go-openeo/runner"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

func main() {
	var err error

	httpBind := flag.String("http", ":8080",
		"[ip]:port for HTTP REST interface")
	storage := backend.Backend{Implementation: "memory", Address: ""}
	flag.Var(&storage, "backend", "impl[:address] of the storage backend")
	config := flag.String("config", "", "service configuration YAML file")
	logRequests := flag.Bool("log-requests", false, "log all requests")
	runJobs := flag.Bool("run-jobs", true,
		"execute queued batch jobs in-process")
	workers := flag.Int("workers", 0,
		"concurrent batch job executors (0 means one per CPU)")
	flag.Parse()

	var gConfig serviceConfig
	if *config != "" {
		gConfig, err = loadConfigYaml(*config)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"err": err,
			}).Fatal("Could not load YAML configuration")
			return
		}
	}

	backend, err := storage.Create()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not create openEO backend")
		return
	}

	if *runJobs {
		// The collection cache added below does not forward the
		// job queue interface, so the runner points at the storage
		// back-end directly.
		jobs := &runner.Runner{
			Backend:     backend,
			Concurrency: *workers,
			ErrorHandler: func(err error) {
				logrus.WithFields(logrus.Fields{
					"err": err,
				}).Error("Could not claim batch jobs")
			},
		}
		go func() {
			if err := jobs.Run(context.Background()); err != nil {
				logrus.WithFields(logrus.Fields{
					"err": err,
				}).Error("Could not run batch jobs")
			}
		}()
	}

	go observe(backend)
	backend = cache.New(backend)

	var reqLogger *logrus.Logger
	if *logRequests {
		stdlog := logrus.StandardLogger()
		reqLogger = &logrus.Logger{
			Out:       stdlog.Out,
			Formatter: stdlog.Formatter,
			Hooks:     stdlog.Hooks,
			Level:     logrus.DebugLevel,
		}
	}

	go ServeHTTP(backend, gConfig, *httpBind, reqLogger)
	select {}
}

// serviceConfig is the shape of the -config YAML file, mirroring the
// settable fields of restserver.Config.  All fields are optional.
type serviceConfig struct {
	Title            string `yaml:"title"`
	Description      string `yaml:"description"`
	ID               string `yaml:"id"`
	BackendVersion   string `yaml:"backend_version"`
	BaseURL          string `yaml:"base_url"`
	OpenIDConnectURL string `yaml:"openid_connect_url"`
}

func loadConfigYaml(filename string) (serviceConfig, error) {
	var result serviceConfig
	var err error
	var bytes []byte
	bytes, err = ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return result, err
}
