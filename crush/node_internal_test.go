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

package crush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_AddWeightRollsUpToRoot(t *testing.T) {
	root := newNode()
	root.addWeight("rack.1/host.1/osd.1", 3)
	root.addWeight("rack.1/host.1/osd.2", 4)
	root.addWeight("rack.1/host.2/osd.1", 5)

	assert.Equal(t, uint64(12), root.weight)

	rack, err := root.get("rack.1")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), rack.weight)

	host1, err := root.get("rack.1/host.1")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), host1.weight)

	host2, err := root.get("rack.1/host.2")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), host2.weight)
}

func TestNode_IsLeafReflectsStructure(t *testing.T) {
	root := newNode()
	root.addWeight("rack.1/host.1/osd.1", 1)

	rack, err := root.get("rack.1")
	require.NoError(t, err)
	assert.False(t, rack.isLeaf())

	osd, err := root.get("rack.1/host.1/osd.1")
	require.NoError(t, err)
	assert.True(t, osd.isLeaf())
}

func TestNode_GetMissingPath(t *testing.T) {
	root := newNode()
	root.addWeight("osd.1", 1)

	_, err := root.get("osd.2")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNode_CountLeaves(t *testing.T) {
	root := newNode()
	root.addWeight("rack.1/host.1/osd.1", 1)
	root.addWeight("rack.1/host.1/osd.2", 1)
	root.addWeight("rack.1/host.2/osd.1", 1)
	root.addWeight("rack.2/host.1/osd.1", 1)

	assert.Equal(t, uint32(4), root.countLeaves())
}

func TestNode_AddWeightUnderflowWraps(t *testing.T) {
	root := newNode()
	root.addWeight("osd.1", 1)
	root.addWeight("osd.1", -2)

	osd, err := root.get("osd.1")
	require.NoError(t, err)
	// one below zero wraps to the maximum uint64, matching the reference's
	// unchecked (weight as i64 + delta) as u64 cast.
	assert.Equal(t, ^uint64(0), osd.weight)
}
