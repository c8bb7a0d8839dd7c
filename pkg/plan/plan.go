// Copyright 2016-2025, Pulumi Corporation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package plan describes a provisioning run as an ordered list of steps with an explicit dependency graph, and
// applies it one step at a time.
//
// A step may name two kinds of predecessors. Uses lists the steps whose outputs feed the step's inputs; the engine
// infers those edges from the data flow. DependsOn lists ordering edges that have no data flow behind them; Apply
// forwards those to the engine as explicit dependencies. Both kinds must refer to steps declared earlier, so the
// declared order is always a valid execution order.
package plan

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/pulumi/s3-toolkit/pkg/graph"
)

// Env is what a step sees when it is applied.
type Env struct {
	Results   *Results          // the handles of every step applied so far.
	DependsOn []pulumi.Resource // the handles named by the step's DependsOn, in declared order.
}

// ApplyFunc registers a step's resource and returns its handle.
type ApplyFunc func(ctx *pulumi.Context, env Env) (pulumi.Resource, error)

// Step describes one resource registration.
type Step struct {
	Name      string   // unique name of the step within its plan.
	Type      string   // the resource type token the step registers; informational.
	Uses      []string // steps whose outputs this step reads.
	DependsOn []string // explicit ordering edges, forwarded to the engine.
	Apply     ApplyFunc
}

// Plan is a validated, ordered list of steps.
type Plan struct {
	steps []Step
	index map[string]int
}

// New validates the steps and returns a plan that applies them in the order given. Every problem found is
// reported, not just the first.
func New(steps ...Step) (*Plan, error) {
	p := &Plan{
		steps: append([]Step(nil), steps...),
		index: make(map[string]int, len(steps)),
	}

	var result *multierror.Error
	for i, s := range p.steps {
		if s.Name == "" {
			result = multierror.Append(result, errors.Errorf("step %d has no name", i))
			continue
		}
		if _, has := p.index[s.Name]; has {
			result = multierror.Append(result, errors.Errorf("duplicate step %q", s.Name))
			continue
		}
		if s.Apply == nil {
			result = multierror.Append(result, errors.Errorf("step %q has no apply function", s.Name))
		}
		p.index[s.Name] = i
	}

	for i, s := range p.steps {
		for _, ref := range s.references() {
			j, has := p.index[ref.name]
			switch {
			case !has:
				result = multierror.Append(result, errors.Errorf("step %q %s unknown step %q", s.Name, ref.kind, ref.name))
			case j >= i:
				result = multierror.Append(result,
					errors.Errorf("step %q %s %q, which must be declared before it", s.Name, ref.kind, ref.name))
			}
		}
	}

	// Only a well-formed edge set can be sorted.
	if result.ErrorOrNil() == nil {
		if _, err := graph.Topsort(p.Graph()); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, errors.Wrap(err, "invalid plan")
	}
	return p, nil
}

// Steps returns the plan's steps in declared order.
func (p *Plan) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Step returns the named step.
func (p *Plan) Step(name string) (Step, bool) {
	i, has := p.index[name]
	if !has {
		return Step{}, false
	}
	return p.steps[i], true
}

// Order returns the step names in dependency order: every step comes after all of its Uses and DependsOn.
func (p *Plan) Order() ([]string, error) {
	sorted, err := graph.Topsort(p.Graph())
	if err != nil {
		return nil, err
	}
	names := make([]string, len(sorted))
	for i, v := range sorted {
		names[i] = v.Label()
	}
	return names, nil
}

type reference struct {
	kind string // "uses" or "dependsOn".
	name string
}

func (s Step) references() []reference {
	refs := make([]reference, 0, len(s.Uses)+len(s.DependsOn))
	for _, u := range s.Uses {
		refs = append(refs, reference{kind: edgeUses, name: u})
	}
	for _, d := range s.DependsOn {
		refs = append(refs, reference{kind: edgeDependsOn, name: d})
	}
	return refs
}

func (s Step) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Type)
}

// Dependents returns the steps that directly or indirectly use or depend on the named step, in declared order.
//
// Steps only refer to steps declared before them, so a single forward scan from the named step finds every
// dependent.
func (p *Plan) Dependents(name string) []string {
	start, has := p.index[name]
	if !has {
		return nil
	}

	reached := map[string]bool{name: true}
	var dependents []string
	for _, s := range p.steps[start+1:] {
		for _, ref := range s.references() {
			if reached[ref.name] {
				reached[s.Name] = true
				dependents = append(dependents, s.Name)
				break
			}
		}
	}
	return dependents
}

// DependenciesOf returns the steps the named step directly or indirectly uses or depends on, in declared order.
func (p *Plan) DependenciesOf(name string) []string {
	end, has := p.index[name]
	if !has {
		return nil
	}

	needed := map[string]bool{name: true}
	for i := end; i >= 0; i-- {
		s := p.steps[i]
		if !needed[s.Name] {
			continue
		}
		for _, ref := range s.references() {
			needed[ref.name] = true
		}
	}

	var deps []string
	for _, s := range p.steps[:end] {
		if needed[s.Name] {
			deps = append(deps, s.Name)
		}
	}
	return deps
}
