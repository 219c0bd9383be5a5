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
	"math"
	"sync"
)

// lnTableSize is the number of entries in the straw weighting table. The
// table is indexed by the low 16 bits of a hash, so it never needs more
// entries than that.
const lnTableSize = 1 << 16

// lnScale preserves enough bits of -ln(u) for integer comparison against
// child weights up to roughly 2^20 without collisions in practice.
const lnScale = 1 << 44

var (
	lnTableOnce sync.Once
	lnTable     [lnTableSize]uint64
)

// straw returns entry i of the process-wide logarithm table, computing the
// table lazily and exactly once on first use. Entry i equals
// round(-ln(i/65536) * 2^44) as an unsigned 64-bit integer. Entry 0
// corresponds to ln(0) = -Inf, which is mapped to the maximum representable
// value so the corresponding draw always loses ties.
func straw(i uint32) uint64 {
	lnTableOnce.Do(initLnTable)
	return lnTable[i]
}

func initLnTable() {
	for i := 0; i < lnTableSize; i++ {
		if i == 0 {
			lnTable[i] = math.MaxUint64
			continue
		}
		u := float64(i) / float64(lnTableSize)
		lnTable[i] = uint64(math.Round(-math.Log(u) * lnScale))
	}
}
