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

// Package metrics instruments an engine's placement calls with both
// prometheus series for scraping and a Collector hook for periodic log
// output.
package metrics

import "github.com/rs/zerolog"

const namespace = "crush"

// Collector logs its current state through log. Implementations are
// expected to be cheap enough to call on every tick of metrics/output.
type Collector interface {
	Output(log zerolog.Logger)
}
