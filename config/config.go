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

// Package config loads a cluster map from YAML into a crush.Engine. The
// file format mirrors the engine's own model directly: a tree of named
// nodes, weight carried only on the leaves, with out-flags settable at
// any level.
package config

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/cephkit/crush/crush"
)

// Node is one vertex of a cluster map as read from YAML. A Node with no
// Children is a leaf and must carry a positive Weight; a Node with
// Children is an interior failure domain and its Weight field is
// ignored, since the engine rolls leaf weight up automatically.
type Node struct {
	Name     string `yaml:"name" validate:"required"`
	Weight   uint64 `yaml:"weight"`
	Out      bool   `yaml:"out"`
	Children []Node `yaml:"children,omitempty" validate:"dive"`
}

// Cluster is the root of a cluster map: an unnamed collection of
// top-level failure domains or leaves.
type Cluster struct {
	Children []Node `yaml:"children" validate:"dive"`
}

// Load decodes a cluster map from r and validates it, but does not apply
// it to an engine; call Apply for that.
func Load(r io.Reader) (*Cluster, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cluster Cluster
	err := dec.Decode(&cluster)
	if err != nil {
		return nil, fmt.Errorf("could not decode cluster config: %w", err)
	}

	err = Validate(&cluster)
	if err != nil {
		return nil, fmt.Errorf("invalid cluster config: %w", err)
	}

	return &cluster, nil
}

// Validate runs struct-level validation (required names) and then the
// business rules a struct tag can't express: every leaf needs a
// positive weight, and siblings at a level must have distinct names. It
// accumulates every violation it finds into a single multierror instead
// of stopping at the first one, so a misconfigured cluster can be fixed
// in one pass.
func Validate(cluster *Cluster) error {
	v := validator.New()
	err := v.Struct(cluster)
	if err != nil {
		return err
	}

	var result *multierror.Error
	seen := make(map[string]struct{}, len(cluster.Children))
	for i := range cluster.Children {
		child := &cluster.Children[i]
		if _, dup := seen[child.Name]; dup {
			result = multierror.Append(result, fmt.Errorf("duplicate top-level name %q", child.Name))
		}
		seen[child.Name] = struct{}{}
		validateNode(child, "", &result)
	}

	return result.ErrorOrNil()
}

func validateNode(n *Node, path string, result **multierror.Error) {
	full := joinPath(path, n.Name)

	if len(n.Children) == 0 && n.Weight == 0 {
		*result = multierror.Append(*result, fmt.Errorf("leaf %q has zero weight", full))
	}

	seen := make(map[string]struct{}, len(n.Children))
	for i := range n.Children {
		child := &n.Children[i]
		if _, dup := seen[child.Name]; dup {
			*result = multierror.Append(*result, fmt.Errorf("duplicate child name %q under %q", child.Name, full))
		}
		seen[child.Name] = struct{}{}
		validateNode(child, full, result)
	}
}

// Apply walks cluster and adds its weights and out-flags to e. It
// applies every leaf's weight first, which as a side effect creates
// every intermediate node along the way, and only then walks the tree a
// second time to mark nodes out - a node has to exist before SetInOut
// can resolve its path.
func Apply(cluster *Cluster, e *crush.Engine) error {
	for i := range cluster.Children {
		applyWeights(e, &cluster.Children[i], "")
	}
	for i := range cluster.Children {
		err := applyOut(e, &cluster.Children[i], "")
		if err != nil {
			return err
		}
	}
	return nil
}

func applyWeights(e *crush.Engine, n *Node, path string) {
	full := joinPath(path, n.Name)
	if len(n.Children) == 0 {
		e.AddWeight(full, int64(n.Weight))
		return
	}
	for i := range n.Children {
		applyWeights(e, &n.Children[i], full)
	}
}

func applyOut(e *crush.Engine, n *Node, path string) error {
	full := joinPath(path, n.Name)
	if n.Out {
		err := e.SetInOut(full, true)
		if err != nil {
			return fmt.Errorf("could not mark %q out: %w", full, err)
		}
	}
	for i := range n.Children {
		err := applyOut(e, &n.Children[i], full)
		if err != nil {
			return err
		}
	}
	return nil
}

// Build decodes, validates and applies a cluster map from r in one step,
// returning a freshly populated engine.
func Build(r io.Reader) (*crush.Engine, error) {
	cluster, err := Load(r)
	if err != nil {
		return nil, err
	}

	e := crush.New()
	err = Apply(cluster, e)
	if err != nil {
		return nil, fmt.Errorf("could not apply cluster config: %w", err)
	}

	return e, nil
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
