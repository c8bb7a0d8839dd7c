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

package graph

import (
	"fmt"
	"strings"
)

// CycleError is returned by Topsort when the graph is not a DAG.
type CycleError struct {
	Path []Vertex // the vertices forming the cycle; the first vertex is repeated at the end.
}

func (e *CycleError) Error() string {
	labels := make([]string, len(e.Path))
	for i, v := range e.Path {
		labels[i] = v.Label()
	}
	return fmt.Sprintf("graph is not a DAG: %s", strings.Join(labels, " -> "))
}

// Topsort topologically sorts the graph, yielding an array of nodes that are in dependency order, using a simple
// DFS-based algorithm.  The graph must be acyclic, otherwise this function will return a *CycleError.
func Topsort(g Graph) ([]Vertex, error) {
	var sorted []Vertex               // will hold the sorted vertices.
	var stack []Vertex                // the current DFS path, used to report cycles.
	visiting := make(map[Vertex]bool) // temporary entries to detect cycles.
	visited := make(map[Vertex]bool)  // entries to avoid visiting the same node twice.

	// Now enumerate the roots, topologically sorting their dependencies.
	for _, r := range g.Roots() {
		if err := topvisit(r.To(), &sorted, &stack, visiting, visited); err != nil {
			return sorted, err
		}
	}
	return sorted, nil
}

func topvisit(n Vertex, sorted *[]Vertex, stack *[]Vertex, visiting map[Vertex]bool, visited map[Vertex]bool) error {
	if visiting[n] {
		return &CycleError{Path: cyclePath(*stack, n)}
	}
	if !visited[n] {
		visiting[n] = true
		*stack = append(*stack, n)
		for _, m := range n.Outs() {
			if err := topvisit(m.To(), sorted, stack, visiting, visited); err != nil {
				return err
			}
		}
		*stack = (*stack)[:len(*stack)-1]
		visited[n] = true
		visiting[n] = false
		*sorted = append(*sorted, n)
	}
	return nil
}

// cyclePath trims the DFS stack down to the portion that starts at n and closes the loop back to it.
func cyclePath(stack []Vertex, n Vertex) []Vertex {
	for i, v := range stack {
		if v == n {
			path := make([]Vertex, 0, len(stack)-i+1)
			path = append(path, stack[i:]...)
			return append(path, n)
		}
	}
	return []Vertex{n, n}
}
