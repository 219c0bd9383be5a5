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
	"encoding/binary"
	"errors"

	"github.com/OneOfOne/xxhash"
)

// ErrNoChildren is returned when choose is called on a node that has no
// weighted children to draw from.
var ErrNoChildren = errors.New("node has no weighted children")

// choose deterministically selects one of n's children given a placement
// group key and a retry index. Every child with non-zero weight is scored
// with a hashed exponential variate divided by its weight; the child with
// the minimum score wins. The score is independent of map iteration order,
// but names are still visited in lexicographic order so ties (which the
// straw draw makes vanishingly unlikely, but which are possible for
// identically weighted children hashing to the same bucket) resolve
// deterministically.
func (n *node) choose(key, index uint32) (string, error) {
	var (
		bestName  string
		bestScore uint64
		found     bool
	)
	for _, name := range n.sortedNames() {
		child := n.children[name]
		if child.weight == 0 {
			continue
		}
		h := hashDraw(name, key, index)
		score := straw(uint32(h&0xFFFF)) / child.weight
		if !found || score < bestScore {
			bestName = name
			bestScore = score
			found = true
		}
	}
	if !found {
		return "", ErrNoChildren
	}
	return bestName, nil
}

// hashDraw computes a stable 64-bit hash of (name, key, index). The hash
// uses a fixed seed (xxhash's default) so that placements are reproducible
// across processes and runs, as required by the determinism property.
func hashDraw(name string, key, index uint32) uint64 {
	h := xxhash.New64()
	_, _ = h.WriteString(name)
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], key)
	binary.LittleEndian.PutUint32(buf[4:8], index)
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
