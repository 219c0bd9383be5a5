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

package metrics_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cephkit/crush/crush/clustertest"
	"github.com/cephkit/crush/metrics"
)

func TestEngine_LocateAllRecordsPlacement(t *testing.T) {
	inner := clustertest.HA(3, 5)
	e := metrics.NewEngine(inner)

	paths, err := e.LocateAll(1, 3)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

func TestEngine_LocateAllPropagatesFailure(t *testing.T) {
	inner := clustertest.SingleRack(1)
	e := metrics.NewEngine(inner)

	_, err := e.LocateAll(1, 5)
	assert.Error(t, err)
}

func TestEngine_OutputDoesNotPanicWithoutActivity(t *testing.T) {
	inner := clustertest.SingleRack(3)
	e := metrics.NewEngine(inner)

	log := zerolog.Nop()
	assert.NotPanics(t, func() { e.Output(log) })
}

func TestEngine_OutputAfterActivity(t *testing.T) {
	inner := clustertest.HA(3, 5)
	e := metrics.NewEngine(inner)

	for pgid := uint32(1); pgid <= 32; pgid++ {
		_, err := e.LocateAll(pgid, 3)
		require.NoError(t, err)
	}

	log := zerolog.Nop()
	assert.NotPanics(t, func() { e.Output(log) })
}
