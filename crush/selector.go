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

// maxLocalFailures is the number of consecutive rejections at one node
// before the selector gives up on the local subtree and restarts from the
// root. It is a pragmatic backstop against loops when a subtree is
// saturated by out flags or by targets already chosen for earlier
// replicas. The reference does not tune this value; it must stay 3 to
// preserve the determinism of placements across implementations.
const maxLocalFailures = 3

// selectFrom realizes num replica picks starting at start, returning the
// names chosen at that single level (not a recursive descent - that is
// Locator's job). failureCount keeps advancing across replicas within one
// call, including across root-escalations, which makes later replicas'
// retry draws depend on the cumulative rejection count of earlier ones.
// This dependency is intentional and undocumented in the reference; it
// must be reproduced for placements to match. observer may be nil.
func (start *node) selectFrom(root *node, pgid uint32, num uint32, observer Observer) ([]string, error) {
	targets := make([]string, 0, num)
	chosen := make(map[string]struct{}, num)

	var failureCount uint32
	for r := uint32(0); r < num; r++ {
		node := start
		localFailure := 0
		fullname := ""
		for {
			if !node.hasCandidate(chosen) {
				return nil, ErrNoCapacity
			}

			name, err := node.choose(pgid, r+failureCount)
			if err != nil {
				return nil, err
			}
			candidate := name
			if fullname != "" {
				candidate = fullname + "/" + name
			}
			child := node.children[name]
			_, duplicate := chosen[candidate]
			if !child.out && !duplicate {
				fullname = candidate
				break
			}

			failureCount++
			localFailure++
			if observer != nil {
				observer.OnRetry()
			}
			if localFailure > maxLocalFailures {
				node = root
				localFailure = 0
				fullname = ""
				if observer != nil {
					observer.OnEscalate()
				}
			}
			// fullname is unchanged on a plain reject: the rejected
			// component was never appended to it, so there is nothing to
			// strip.
		}
		targets = append(targets, fullname)
		chosen[fullname] = struct{}{}
	}
	return targets, nil
}

// hasCandidate reports whether n has at least one child that is weighted,
// not marked out, and not already present in chosen. It lets the selector
// detect an impossible request (more replicas than distinct available
// targets) up front instead of retrying and escalating forever.
func (n *node) hasCandidate(chosen map[string]struct{}) bool {
	for name, child := range n.children {
		if child.weight == 0 || child.out {
			continue
		}
		if _, ok := chosen[name]; ok {
			continue
		}
		return true
	}
	return false
}
