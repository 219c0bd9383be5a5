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
	"fmt"
	"sort"
)

// Locate repeatedly selects a single target, descending one level at a
// time, until it reaches a leaf, returning the full path to that leaf.
func (e *Engine) Locate(pgid uint32) (string, error) {
	current := ""
	for {
		n, err := e.root.get(current)
		if err != nil {
			return "", fmt.Errorf("could not resolve current path %q: %w", current, err)
		}
		if n.isLeaf() {
			return current, nil
		}
		names, err := e.Select(pgid, 1, current)
		if err != nil {
			return "", fmt.Errorf("could not locate past %q: %w", current, err)
		}
		current = appendPath(current, names[0])
	}
}

// LocateAll obtains replicas top-level picks with a single Select call
// from the root, guaranteeing they come from distinct top-level subtrees,
// then independently descends each pick to a leaf the way Locate does.
// The returned paths are sorted lexicographically.
func (e *Engine) LocateAll(pgid uint32, replicas uint32) ([]string, error) {
	picks, err := e.Select(pgid, replicas, "")
	if err != nil {
		return nil, fmt.Errorf("could not select %d top-level targets: %w", replicas, err)
	}

	paths := make([]string, 0, len(picks))
	for _, pick := range picks {
		current := pick
		for {
			n, err := e.root.get(current)
			if err != nil {
				return nil, fmt.Errorf("could not resolve path %q: %w", current, err)
			}
			if n.isLeaf() {
				break
			}
			names, err := e.Select(pgid, 1, current)
			if err != nil {
				return nil, fmt.Errorf("could not descend past %q: %w", current, err)
			}
			current = appendPath(current, names[0])
		}
		paths = append(paths, current)
	}

	sort.Strings(paths)
	return paths, nil
}

func appendPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
