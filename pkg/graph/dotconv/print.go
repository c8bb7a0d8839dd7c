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

// Package dotconv converts a graph into the DOT graph description language.
package dotconv

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pulumi/s3-toolkit/pkg/graph"
)

// Print writes g to w as a DOT digraph. Vertices are emitted in the order they are first reached from the roots,
// and each edge carries its label.
func Print(g graph.Graph, w io.Writer) error {
	b := bufio.NewWriter(w)

	ids := make(map[graph.Vertex]string)
	var order []graph.Vertex
	var visit func(v graph.Vertex)
	visit = func(v graph.Vertex) {
		if _, seen := ids[v]; seen {
			return
		}
		ids[v] = "Step" + strconv.Itoa(len(order))
		order = append(order, v)
		for _, out := range v.Outs() {
			visit(out.To())
		}
	}
	for _, root := range g.Roots() {
		visit(root.To())
	}

	if _, err := b.WriteString("strict digraph {\n"); err != nil {
		return err
	}
	for _, v := range order {
		if _, err := fmt.Fprintf(b, "    %s [label=%s];\n", ids[v], strconv.Quote(v.Label())); err != nil {
			return err
		}
	}
	for _, v := range order {
		for _, out := range v.Outs() {
			line := fmt.Sprintf("    %s -> %s", ids[v], ids[out.To()])
			if l := out.Label(); l != "" {
				line += " [label=" + strconv.Quote(l) + "]"
			}
			if _, err := b.WriteString(line + ";\n"); err != nil {
				return err
			}
		}
	}
	if _, err := b.WriteString("}\n"); err != nil {
		return err
	}
	return b.Flush()
}
