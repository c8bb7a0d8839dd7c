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

package plan

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/internals"
)

// Results holds the handles produced by applied steps.
type Results struct {
	byName map[string]pulumi.Resource
	order  []string
}

func newResults() *Results {
	return &Results{byName: make(map[string]pulumi.Resource)}
}

func (r *Results) add(name string, res pulumi.Resource) {
	r.byName[name] = res
	r.order = append(r.order, name)
}

// Get returns the handle produced by the named step, or nil if that step has not been applied.
func (r *Results) Get(name string) pulumi.Resource {
	return r.byName[name]
}

// Order returns the names of applied steps, in the order the engine acknowledged them.
func (r *Results) Order() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of applied steps.
func (r *Results) Len() int {
	return len(r.order)
}

// Apply registers the plan's steps one at a time, in declared order. Each step is issued only after the engine has
// acknowledged the previous registration, observed as the resolution of its URN. The first failure stops the run;
// steps already registered are left to the engine.
func Apply(ctx *pulumi.Context, p *Plan) (*Results, error) {
	contract.Requiref(p != nil, "p", "must not be nil")

	results := newResults()
	for i, step := range p.steps {
		env := Env{Results: results}
		for _, name := range step.DependsOn {
			dep := results.Get(name)
			contract.Assertf(dep != nil, "step %q depends on %q, which has not been applied", step.Name, name)
			env.DependsOn = append(env.DependsOn, dep)
		}

		logging.V(5).Infof("plan.Apply: issuing step %d/%d %v", i+1, len(p.steps), step)
		res, err := step.Apply(ctx, env)
		if err != nil {
			warnSkipped(ctx, p, step.Name)
			return results, errors.Wrapf(err, "applying step %q", step.Name)
		}
		contract.Assertf(res != nil, "step %q returned no resource", step.Name)

		if err := acknowledge(ctx, res); err != nil {
			warnSkipped(ctx, p, step.Name)
			return results, errors.Wrapf(err, "registering step %q", step.Name)
		}
		results.add(step.Name, res)
		logging.V(5).Infof("plan.Apply: step %q acknowledged", step.Name)
	}
	return results, nil
}

// acknowledge blocks until the engine has registered res.
func acknowledge(ctx *pulumi.Context, res pulumi.Resource) error {
	_, err := internals.UnsafeAwaitOutput(ctx.Context(), res.URN())
	return err
}

// warnSkipped tells the user which steps were not applied because the named step failed.
func warnSkipped(ctx *pulumi.Context, p *Plan, failed string) {
	if msg := skippedMessage(p, failed); msg != "" {
		contract.IgnoreError(ctx.Log.Warn(msg, nil))
	}
}

// skippedMessage names every step declared after failed, since Apply stops at the first failure. Steps that
// depend on failed are marked. It returns "" when failed was the last step.
func skippedMessage(p *Plan, failed string) string {
	i, has := p.index[failed]
	if !has || i == len(p.steps)-1 {
		return ""
	}

	dependent := make(map[string]bool)
	for _, name := range p.Dependents(failed) {
		dependent[name] = true
	}
	var names []string
	for _, s := range p.steps[i+1:] {
		if dependent[s.Name] {
			names = append(names, s.Name+" (depends on it)")
		} else {
			names = append(names, s.Name)
		}
	}
	return fmt.Sprintf("step %q failed; the remaining steps were not applied: %s", failed, strings.Join(names, ", "))
}
