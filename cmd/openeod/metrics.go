// Copyright 2015-2018 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"time"

	"github.com/diffeo/go-openeo/openeo"
	"github.com/prometheus/client_golang/prometheus"
)

var jobSummary = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "diffeo",
		Subsystem: "openeo",
		Name:      "job_summary",
		Help:      "Count of batch jobs by status",
	},
	[]string{
		"status",
	},
)

func init() {
	prometheus.MustRegister(jobSummary)
}

// observe polls the back-end's batch job summary into the gauge
// behind the /metrics endpoint.
func observe(backend openeo.Backend) {
	for {
		summary, _ := backend.Summarize()
		for _, record := range summary {
			jobSummary.With(prometheus.Labels{
				"status": record.Status.String(),
			}).Set(float64(record.Count))
		}
		time.Sleep(15 * time.Second)
	}
}
