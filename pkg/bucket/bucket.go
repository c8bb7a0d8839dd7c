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

// Package bucket declares an S3 bucket and its configuration sub-resources. Each operation registers exactly one
// resource with the Pulumi engine and returns its handle; failures come from the engine and are returned as-is,
// wrapped with the operation that issued them.
package bucket

import (
	"github.com/pkg/errors"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Tag keys attached to every bucket.
const (
	TagStack       = "PROJECT_STACK"
	TagProject     = "PROJECT"
	TagApp         = "APP"
	TagEnvironment = "Environment"
	TagName        = "Name"
)

// DefaultApp is the APP tag value used when none is configured.
const DefaultApp = "TEST_APP"

// Tags holds the deployment-wide tag values. Empty values are attached as empty strings.
type Tags struct {
	Stack   string
	Project string
	App     string
}

// For returns the complete tag set for the named bucket.
func (t Tags) For(bucketName string) map[string]string {
	return map[string]string{
		TagEnvironment: bucketName,
		TagName:        bucketName,
		TagStack:       t.Stack,
		TagProject:     t.Project,
		TagApp:         t.App,
	}
}

// BucketRequest describes the bucket to create.
type BucketRequest struct {
	ID       string // the Pulumi resource name.
	Name     string // the physical bucket name.
	Tags     Tags
	Provider pulumi.ProviderResource
}

// Request describes one configuration operation applied to an existing bucket.
type Request struct {
	ID        string             // the Pulumi resource name.
	BucketID  pulumi.StringInput // the ID of the bucket being configured.
	Provider  pulumi.ProviderResource
	DependsOn []pulumi.Resource // optional explicit ordering dependencies.
}

// PolicyRequest is a Request for the bucket policy, which also needs the physical bucket name to build ARNs.
type PolicyRequest struct {
	Request
	BucketName string
}

func (r Request) options() []pulumi.ResourceOption {
	var opts []pulumi.ResourceOption
	if r.Provider != nil {
		opts = append(opts, pulumi.Provider(r.Provider))
	}
	if len(r.DependsOn) > 0 {
		opts = append(opts, pulumi.DependsOn(r.DependsOn))
	}
	return opts
}

// Create requests a new bucket named req.Name, tagged with the deployment tags.
func Create(ctx *pulumi.Context, req BucketRequest) (*s3.BucketV2, error) {
	logging.V(7).Infof("bucket.Create(%s): name=%s", req.ID, req.Name)

	var opts []pulumi.ResourceOption
	if req.Provider != nil {
		opts = append(opts, pulumi.Provider(req.Provider))
	}
	b, err := s3.NewBucketV2(ctx, req.ID, &s3.BucketV2Args{
		Bucket:            pulumi.String(req.Name),
		ObjectLockEnabled: pulumi.Bool(false),
		Tags:              pulumi.ToStringMap(req.Tags.For(req.Name)),
	}, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "creating bucket %q", req.Name)
	}
	return b, nil
}
