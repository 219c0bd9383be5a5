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

package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/cephkit/crush/config"
	"github.com/cephkit/crush/metrics"
	"github.com/cephkit/crush/metrics/output"
)

func main() {

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagConfig   string
		flagAddress  string
		flagLog      string
		flagInterval time.Duration
	)

	pflag.StringVarP(&flagConfig, "config", "c", "", "cluster map YAML file")
	pflag.StringVarP(&flagAddress, "address", "a", ":9181", "address to serve /metrics on")
	pflag.StringVarP(&flagLog, "log", "l", "info", "log output level")
	pflag.DurationVarP(&flagInterval, "interval", "i", 30*time.Second, "interval between log snapshots of placement activity")

	pflag.Parse()

	// Logger initialization.
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

	instrumented := metrics.NewEngine(engine)
	server := metrics.NewServer(log, flagAddress, instrumented.Registry())
	logger := output.New(log, flagInterval)
	logger.Register(instrumented)

	logger.Run()

	go func() {
		err := server.Start()
		if err != nil {
			log.Error().Err(err).Msg("metrics server encountered error")
		}
	}()

	log.Info().Str("address", flagAddress).Msg("crush metrics server running")

	<-sig
	log.Info().Msg("crush metrics server stopping")

	go func() {
		<-sig
		log.Warn().Msg("forcing exit")
		os.Exit(1)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Stop()
	err = server.Stop(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not stop metrics server")
	}

	os.Exit(0)
}
