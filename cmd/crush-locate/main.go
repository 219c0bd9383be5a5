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

// Command crush-locate resolves placement-group ids against a cluster
// map and prints the leaves chosen for each.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/cephkit/crush/config"
)

func main() {
	var (
		flagConfig   string
		flagPGIDs    string
		flagReplicas uint32
		flagLog      string
		flagSpread   bool
	)

	pflag.StringVarP(&flagConfig, "config", "c", "", "cluster map YAML file")
	pflag.StringVarP(&flagPGIDs, "pgid", "p", "0", "comma-separated list of placement-group ids to locate")
	pflag.Uint32VarP(&flagReplicas, "replicas", "r", 1, "number of replicas to locate per placement group")
	pflag.StringVarP(&flagLog, "log", "l", "info", "log output level")
	pflag.BoolVarP(&flagSpread, "spread", "s", false, "aggregate placements across all given pgids and report the percentage share of each leaf instead of printing one line per pgid")

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

	counts := make(map[string]int)
	var total int
	for _, raw := range strings.Split(flagPGIDs, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		var pgid uint32
		_, err := fmt.Sscanf(raw, "%d", &pgid)
		if err != nil {
			log.Fatal().Err(err).Str("pgid", raw).Msg("could not parse placement group id")
		}

		paths, err := engine.LocateAll(pgid, flagReplicas)
		if err != nil {
			log.Error().Err(err).Uint32("pgid", pgid).Msg("could not locate placement group")
			continue
		}

		if !flagSpread {
			fmt.Printf("%d: %s\n", pgid, strings.Join(paths, ", "))
			continue
		}
		for _, path := range paths {
			counts[path]++
			total++
		}
	}

	if !flagSpread || total == 0 {
		return
	}

	leaves := make([]string, 0, len(counts))
	for leaf := range counts {
		leaves = append(leaves, leaf)
	}
	sort.Strings(leaves)

	for _, leaf := range leaves {
		share := float64(counts[leaf]) / float64(total) * 100
		fmt.Printf("%s: %d (%.2f%%)\n", leaf, counts[leaf], share)
	}
	fmt.Printf("total placements: %d\n", total)
}
