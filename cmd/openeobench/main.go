// Copyright 2016-2020 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package openeobench provides a load-generation tool for an openEO
// batch job back-end.  It drives the storage layer directly, without
// the REST API in between, so it measures the back-end and not the
// HTTP stack.
package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/diffeo/go-openeo/backend"
	"github.com/diffeo/go-openeo/openeo"
	"github.com/diffeo/go-openeo/runner"
	"github.com/satori/go.uuid"
	"github.com/urfave/cli"
)

type benchWork struct {
	Backend     openeo.Backend
	Queue       openeo.JobQueue
	User        string
	Concurrency int
}

func (bench *benchWork) Run(runner func()) {
	wg := sync.WaitGroup{}
	wg.Add(bench.Concurrency)
	for i := 0; i < bench.Concurrency; i++ {
		go func() {
			defer wg.Done()
			runner()
		}()
	}
	wg.Wait()
}

var bench benchWork

// benchProcess is the process document every benchmark job carries.
// The back-ends store it without evaluating it, so its content only
// matters in that it is well formed.
func benchProcess() map[string]interface{} {
	return map[string]interface{}{
		"process_graph": map[string]interface{}{
			"loadco1": map[string]interface{}{
				"process_id": "load_collection",
				"arguments": map[string]interface{}{
					"id": "S2_FOOBAR",
				},
				"result": true,
			},
		},
	}
}

var addJobs = cli.Command{
	Name:  "add",
	Usage: "create and queue many batch jobs",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of batch jobs to create",
		},
	},
	Action: func(c *cli.Context) {
		count := c.Int("count")
		numbers := make(chan int)
		go func() {
			for i := 1; i <= count; i++ {
				numbers <- i
			}
			close(numbers)
		}()
		bench.Run(func() {
			for <-numbers != 0 {
				title := uuid.NewV4().String()
				job, err := bench.Backend.Jobs().CreateJob(bench.User, openeo.JobRequest{
					Process: benchProcess(),
					Title:   title,
				})
				if err != nil {
					continue
				}
				_ = bench.Backend.Jobs().StartJob(bench.User, job.ID)
			}
		})
	},
}

var doWork = cli.Command{
	Name:  "do",
	Usage: "execute queued jobs as long as there are more",
	Flags: []cli.Flag{
		cli.DurationFlag{
			Name:  "delay",
			Value: 0,
			Usage: "wait this long per job before completion",
		},
	},
	Action: func(c *cli.Context) {
		delay := c.Duration("delay")
		bench.Run(func() {
			for {
				ref, ok, err := bench.Queue.ClaimQueuedJob()
				if err != nil || !ok {
					break
				}
				time.Sleep(delay)
				_ = bench.Queue.FinishJob(ref, []openeo.JobResult{})
			}
		})
	},
}

var clear = cli.Command{
	Name:  "clear",
	Usage: "delete all of the user's batch jobs",
	Action: func(c *cli.Context) {
		jobs, err := bench.Backend.Jobs().ListJobs(bench.User)
		if err != nil {
			return
		}
		for _, job := range jobs {
			_ = bench.Backend.Jobs().DeleteJob(bench.User, job.ID)
		}
	},
}

func main() {
	storage := backend.Backend{Implementation: "memory"}
	app := cli.NewApp()
	app.Usage = "benchmark an openEO batch job back-end"
	app.Flags = []cli.Flag{
		cli.GenericFlag{
			Name:  "backend",
			Value: &storage,
			Usage: "impl:[address] of openEO backend",
		},
		cli.StringFlag{
			Name:  "user",
			Value: "bench",
			Usage: "create jobs as this user",
		},
		cli.IntFlag{
			Name:  "concurrency",
			Value: runtime.NumCPU(),
			Usage: "run this many jobs in parallel",
		},
	}
	app.Commands = []cli.Command{
		addJobs,
		doWork,
		clear,
	}
	app.Before = func(c *cli.Context) (err error) {
		bench.Backend, err = storage.Create()
		if err != nil {
			return
		}

		queue, ok := bench.Backend.(openeo.JobQueue)
		if !ok {
			return runner.ErrNoJobQueue
		}
		bench.Queue = queue

		bench.User = c.String("user")
		bench.Concurrency = c.Int("concurrency")

		return
	}
	app.RunAndExitOnError()
}
