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

package crush_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cephkit/crush/crush"
	"github.com/cephkit/crush/crush/clustertest"
)

func TestEngine_AddWeightAndTotalWeight(t *testing.T) {
	e := crush.New()
	e.AddWeight("osd.1", 1)
	e.AddWeight("osd.2", 1)

	assert.Equal(t, uint64(2), e.TotalWeight())

	w, err := e.GetWeight("osd.1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), w)
}

func TestEngine_AddWeightCreatesIntermediateNodes(t *testing.T) {
	e := crush.New()
	e.AddWeight("rack.1/host.1/osd.1", 5)

	rackWeight, err := e.GetWeight("rack.1")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), rackWeight)

	hostWeight, err := e.GetWeight("rack.1/host.1")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), hostWeight)

	assert.Equal(t, uint64(5), e.TotalWeight())
}

func TestEngine_GetWeightMissingPath(t *testing.T) {
	e := crush.New()
	e.AddWeight("osd.1", 1)

	_, err := e.GetWeight("osd.2")
	assert.ErrorIs(t, err, crush.ErrNodeNotFound)
}

func TestEngine_SetInOut(t *testing.T) {
	e := clustertest.HA(3, 5)

	out, err := e.GetInOut("host.2")
	require.NoError(t, err)
	assert.False(t, out)

	require.NoError(t, e.SetInOut("host.2", true))

	out, err = e.GetInOut("host.2")
	require.NoError(t, err)
	assert.True(t, out)
}

func TestEngine_SelectRejectsOutSubtree(t *testing.T) {
	// 4 hosts so that marking one out still leaves 3 in-service top-level
	// subtrees - enough to satisfy the 3 replicas requested below.
	e := clustertest.HA(4, 5)
	require.NoError(t, e.SetInOut("host.2", true))

	for pgid := uint32(1); pgid <= 2048; pgid++ {
		paths, err := e.LocateAll(pgid, 3)
		require.NoError(t, err)
		for _, path := range paths {
			assert.False(t, strings.HasPrefix(path, "host.2/"), "pgid %d placed on out host: %s", pgid, path)
		}
	}
}

func TestEngine_RecommendedPGs(t *testing.T) {
	e := clustertest.Datacenter(5, 5, 8)

	pgs, err := e.RecommendedPGs(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(8192), pgs)
}

func TestEngine_RecommendedPGsDivisionByZero(t *testing.T) {
	e := clustertest.SingleRack(5)

	_, err := e.RecommendedPGs(0)
	assert.ErrorIs(t, err, crush.ErrDivisionByZero)
}

// TestBoundedChurn exercises the "expected fraction of placements that
// move is near-minimal" property: adding one host's worth of osds to an
// existing cluster should shift fewer than 80% of placement groups. This
// supplements the reference's commented-out move_factor_add test.
func TestBoundedChurn(t *testing.T) {
	const (
		hosts    = 3
		disks    = 5
		replicas = 3
		pgs      = 16384
	)

	before := clustertest.HA(hosts, disks)

	after := clustertest.HA(hosts, disks)
	for osd := uint32(1); osd <= disks; osd++ {
		after.AddWeight("host.4/osd."+strconv.Itoa(int(osd)), 1)
	}

	var moved int
	for pgid := uint32(1); pgid <= pgs; pgid++ {
		beforePlacement, err := before.LocateAll(pgid, replicas)
		require.NoError(t, err)
		afterPlacement, err := after.LocateAll(pgid, replicas)
		require.NoError(t, err)

		if strings.Join(beforePlacement, ",") != strings.Join(afterPlacement, ",") {
			moved++
		}
	}

	fraction := float64(moved) / float64(pgs)
	assert.Less(t, fraction, 0.8, "expected fewer than 80%% of placement groups to move, got %.2f%%", fraction*100)
}
