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
	"github.com/pulumi/s3-toolkit/pkg/graph"
)

// Edge kinds, used as edge labels.
const (
	edgeUses      = "uses"
	edgeDependsOn = "dependsOn"
)

type stepGraph struct {
	roots []graph.Edge
}

var _ graph.Graph = (*stepGraph)(nil)

func (g *stepGraph) Roots() []graph.Edge { return g.roots }

type stepVertex struct {
	step Step
	ins  []graph.Edge
	outs []graph.Edge
}

var _ graph.Vertex = (*stepVertex)(nil)

func (v *stepVertex) Data() interface{} { return v.step }
func (v *stepVertex) Label() string      { return v.step.Name }
func (v *stepVertex) Ins() []graph.Edge  { return v.ins }
func (v *stepVertex) Outs() []graph.Edge { return v.outs }

// stepEdge points from a step to one of its predecessors. Root edges have no From vertex.
type stepEdge struct {
	kind string
	from *stepVertex
	to   *stepVertex
}

var _ graph.Edge = (*stepEdge)(nil)

func (e *stepEdge) Data() interface{} { return e.kind }
func (e *stepEdge) Label() string      { return e.kind }
func (e *stepEdge) To() graph.Vertex   { return e.to }

func (e *stepEdge) From() graph.Vertex {
	if e.from == nil {
		return nil
	}
	return e.from
}

// Graph returns the plan as a graph. Every step is reachable from a root edge, in declared order, so a sort visits
// steps that nothing depends upon as well.
func (p *Plan) Graph() graph.Graph {
	vertices := make(map[string]*stepVertex, len(p.steps))
	for _, s := range p.steps {
		vertices[s.Name] = &stepVertex{step: s}
	}

	g := &stepGraph{}
	for _, s := range p.steps {
		v := vertices[s.Name]
		for _, ref := range s.references() {
			to, has := vertices[ref.name]
			if !has {
				continue
			}
			e := &stepEdge{kind: ref.kind, from: v, to: to}
			v.outs = append(v.outs, e)
			to.ins = append(to.ins, e)
		}
		g.roots = append(g.roots, &stepEdge{to: v})
	}
	return g
}
