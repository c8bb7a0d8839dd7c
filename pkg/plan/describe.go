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
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Encode.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Description is the serializable form of a plan.
type Description struct {
	Steps []StepDescription `json:"steps" yaml:"steps"`
}

// StepDescription is the serializable form of a step.
type StepDescription struct {
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type" yaml:"type"`
	Uses      []string `json:"uses,omitempty" yaml:"uses,omitempty"`
	DependsOn []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
}

// Describe returns the serializable form of the plan, in dependency order.
func (p *Plan) Describe() (Description, error) {
	order, err := p.Order()
	if err != nil {
		return Description{}, err
	}

	d := Description{Steps: make([]StepDescription, 0, len(order))}
	for _, name := range order {
		s := p.steps[p.index[name]]
		d.Steps = append(d.Steps, StepDescription{
			Name:      s.Name,
			Type:      s.Type,
			Uses:      s.Uses,
			DependsOn: s.DependsOn,
		})
	}
	return d, nil
}

// Encode writes the description to w in the given format.
func Encode(w io.Writer, d Description, format string) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return errors.Wrap(err, "encoding plan as YAML")
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return errors.Wrap(err, "encoding plan as JSON")
		}
		return nil
	default:
		return errors.Errorf("unknown output format %q (want %q or %q)", format, FormatYAML, FormatJSON)
	}
}
