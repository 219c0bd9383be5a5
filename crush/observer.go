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

// Observer receives notifications about selection internals that are
// otherwise invisible to a caller that only sees Select's final result:
// a rejected draw (OnRetry) and a local subtree giving up and restarting
// from the root (OnEscalate). It exists so that a package outside crush
// (for example a prometheus collector) can instrument placement without
// crush importing a metrics stack itself. A nil Observer is always safe;
// every call site checks before invoking it.
type Observer interface {
	OnRetry()
	OnEscalate()
}
