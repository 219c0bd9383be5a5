// Copyright 2024 The Crush Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Command crush-bench drives a bounded pool of concurrent goroutines
// against a single engine's query methods, exercising the engine's
// concurrent-read contract and reporting achieved throughput.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/semaphore"

	"github.com/cephkit/crush/config"
)

func main() {
	var (
		flagConfig      string
		flagReplicas    uint32
		flagQueries     uint64
		flagConcurrency int64
		flagLog         string
	)

	pflag.StringVarP(&flagConfig, "config", "c", "", "cluster map YAML file")
	pflag.Uint32VarP(&flagReplicas, "replicas", "r", 3, "number of replicas to locate per query")
	pflag.Uint64VarP(&flagQueries, "queries", "n", 100000, "total number of LocateAll calls to issue")
	pflag.Int64VarP(&flagConcurrency, "concurrency", "j", 32, "maximum number of concurrent queries in flight")
	pflag.StringVarP(&flagLog, "log", "l", "info", "log output level")

	pflag.Parse()

	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLog)
	if err != nil {
		log.Fatal().Err(err).Msg("could not parse log level")
	}
	log = log.Level(level)

	if flagConfig == "" {
		log.Fatal().Msg("cluster map config file is required")
	}

	file, err := os.Open(flagConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open cluster map config")
	}
	defer file.Close()

	engine, err := config.Build(file)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build cluster map")
	}

	ctx := context.Background()
	sem := semaphore.NewWeighted(flagConcurrency)

	var failures uint64
	start := time.Now()

	for i := uint64(0); i < flagQueries; i++ {
		err := sem.Acquire(ctx, 1)
		if err != nil {
			log.Fatal().Err(err).Msg("could not acquire semaphore")
		}

		go func(pgid uint32) {
			defer sem.Release(1)
			_, err := engine.LocateAll(pgid, flagReplicas)
			if err != nil {
				atomic.AddUint64(&failures, 1)
			}
		}(uint32(i))
	}

	// Acquiring the full weight blocks until every outstanding goroutine
	// has released, which is the cheapest way to wait for them all
	// without a separate WaitGroup.
	err = sem.Acquire(ctx, flagConcurrency)
	if err != nil {
		log.Fatal().Err(err).Msg("could not drain in-flight queries")
	}

	elapsed := time.Since(start)
	fmt.Printf("%d queries in %s (%.0f/s), %d failures\n",
		flagQueries, elapsed.Round(time.Millisecond), float64(flagQueries)/elapsed.Seconds(), failures)
}
