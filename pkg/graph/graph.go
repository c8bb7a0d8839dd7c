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

// Package graph contains the small directed-graph vocabulary used to order provisioning steps.
package graph

// Graph is an instance of a graph, exposed through its roots.
type Graph interface {
	Roots() []Edge // the root edges, pointing at the vertices traversals start from.
}

// Vertex is a single vertex within an overall graph.
type Vertex interface {
	Data() interface{} // arbitrary data associated with this vertex.
	Label() string     // the vertex's label, used in diagnostics.
	Ins() []Edge       // incoming edges from other vertices within the graph to this vertex.
	Outs() []Edge      // outgoing edges from this vertex to other vertices within the graph.
}

// Edge is a directed edge from one vertex to another.  An edge From A To B means A depends upon B.
type Edge interface {
	Data() interface{} // arbitrary data associated with this edge.
	Label() string     // the edge's label, used in diagnostics.
	From() Vertex      // the vertex this edge connects from.
	To() Vertex        // the vertex this edge connects to.
}
