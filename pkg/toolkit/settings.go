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

package toolkit

import (
	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"github.com/pulumi/s3-toolkit/pkg/bucket"
)

// ConfigNamespace is the stack configuration namespace read by LoadSettings.
const ConfigNamespace = "s3-toolkit"

// Stack configuration keys, relative to ConfigNamespace.
const (
	KeyResourceName   = "resourceName"
	KeyBucketName     = "bucketName"
	KeyRegion         = "region"
	KeyApp            = "app"
	KeyAllowedOrigins = "allowedOrigins"
)

// Defaults applied when a key is not set.
const (
	DefaultResourceName = "random-id"
	DefaultBucketName   = "example-bucket"
	DefaultRegion       = "us-east-1"
)

// Settings is the complete input of a provisioning run.
type Settings struct {
	ResourceName   string   // the Pulumi resource name shared by the bucket and its configuration resources.
	BucketName     string   // the physical bucket name.
	Region         string   // the region of the explicit AWS provider.
	App            string   // the APP tag.
	AllowedOrigins []string // the CORS allow-list.
	Stack          string   // the PROJECT_STACK tag.
	Project        string   // the PROJECT tag.
}

// DefaultSettings returns the settings used when no configuration is present.
func DefaultSettings() Settings {
	return Settings{
		ResourceName:   DefaultResourceName,
		BucketName:     DefaultBucketName,
		Region:         DefaultRegion,
		App:            bucket.DefaultApp,
		AllowedOrigins: append([]string(nil), bucket.DefaultAllowedOrigins...),
	}
}

// Tags returns the deployment tags derived from the settings.
func (s Settings) Tags() bucket.Tags {
	return bucket.Tags{Stack: s.Stack, Project: s.Project, App: s.App}
}

// LoadSettings reads the stack configuration, falling back to DefaultSettings for missing keys. The stack and
// project names come from the Pulumi context.
func LoadSettings(ctx *pulumi.Context) (Settings, error) {
	s := DefaultSettings()
	s.Stack = ctx.Stack()
	s.Project = ctx.Project()

	cfg := config.New(ctx, ConfigNamespace)
	if v := cfg.Get(KeyResourceName); v != "" {
		s.ResourceName = v
	}
	if v := cfg.Get(KeyBucketName); v != "" {
		s.BucketName = v
	}
	if v := cfg.Get(KeyRegion); v != "" {
		s.Region = v
	}
	if v := cfg.Get(KeyApp); v != "" {
		s.App = v
	}
	if cfg.Get(KeyAllowedOrigins) != "" {
		var origins []string
		if err := cfg.TryObject(KeyAllowedOrigins, &origins); err != nil {
			return Settings{}, errors.Wrapf(err, "reading %s:%s", ConfigNamespace, KeyAllowedOrigins)
		}
		if len(origins) > 0 {
			s.AllowedOrigins = origins
		}
	}
	return s, nil
}
