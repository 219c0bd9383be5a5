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

// Package clustertest builds small synthetic cluster maps for tests and
// benchmarks, mirroring the single-node, HA, and datacenter fixtures the
// original reference test suite used.
package clustertest

import (
	"fmt"

	"github.com/cephkit/crush/crush"
)

// SingleRack builds a cluster of osds directly weighted 1 each, with no
// intervening rack or host domain.
func SingleRack(osds uint32) *crush.Engine {
	e := crush.New()
	for osd := uint32(1); osd <= osds; osd++ {
		e.AddWeight(fmt.Sprintf("osd.%d", osd), 1)
	}
	return e
}

// HA builds a cluster with a "host" failure domain directly above the
// osds, each osd weighted 1.
func HA(hosts, osds uint32) *crush.Engine {
	e := crush.New()
	for host := uint32(1); host <= hosts; host++ {
		for osd := uint32(1); osd <= osds; osd++ {
			e.AddWeight(fmt.Sprintf("host.%d/osd.%d", host, osd), 1)
		}
	}
	return e
}

// Datacenter builds a cluster with "rack" and "host" failure domains above
// the osds, each osd weighted 1.
func Datacenter(racks, hosts, osds uint32) *crush.Engine {
	e := crush.New()
	for rack := uint32(1); rack <= racks; rack++ {
		for host := uint32(1); host <= hosts; host++ {
			for osd := uint32(1); osd <= osds; osd++ {
				e.AddWeight(fmt.Sprintf("rack.%d/host.%d/osd.%d", rack, host, osd), 1)
			}
		}
	}
	return e
}
