// Copyright 2015-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"errors"
	"net/http"

	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/restserver"
	"github.com/google/go-cloud/health"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// ServeHTTP runs the openEO REST server on the specified local
// address.  Alongside the API trees it serves Prometheus metrics at
// /metrics and a liveness probe at /healthz.  This serves connections
// forever, and probably wants to be run in a goroutine; it exits the
// process on any error in the initial setup or in accepting
// connections.  If reqLogger is not nil every request is logged to it.
func ServeHTTP(backend openeo.Backend, config serviceConfig, laddr string, reqLogger *logrus.Logger) {
	r := mux.NewRouter()
	r.NotFoundHandler = restserver.NotFound
	err := restserver.PopulateRouter(r, backend, restserver.Config{
		Title:            config.Title,
		Description:      config.Description,
		ID:               config.ID,
		BackendVersion:   config.BackendVersion,
		BaseURL:          config.BaseURL,
		OpenIDConnectURL: config.OpenIDConnectURL,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not set up the REST API")
		return
	}
	r.Handle("/metrics", promhttp.Handler())
	healthz := &health.Handler{}
	healthz.Add(backendHealth{backend: backend})
	r.Handle("/healthz", healthz)

	recovery := negroni.NewRecovery()
	recovery.Logger = logrus.StandardLogger()
	recovery.PrintStack = false
	n := negroni.New(recovery)
	if reqLogger != nil {
		l := negroni.NewLogger()
		l.ALogger = reqLogger
		n.Use(l)
	}
	n.UseHandler(r)

	err = http.ListenAndServe(laddr, n)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not serve HTTP")
	}
}

// backendHealth adapts a back-end's health check to the go-cloud
// health.Checker interface.
type backendHealth struct {
	backend openeo.Backend
}

func (h backendHealth) CheckHealth() error {
	if status := h.backend.HealthCheck(); status != "OK" {
		return errors.New(status)
	}
	return nil
}
