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

// Package toolkit assembles the bucket operations into the provisioning program: one bucket, then its encryption,
// ownership controls, ACL, CORS, policy, public-access block, lifecycle and logging configuration.
package toolkit

import (
	"github.com/pkg/errors"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/pulumi/s3-toolkit/pkg/bucket"
	"github.com/pulumi/s3-toolkit/pkg/plan"
)

// Step names, in the order they are applied.
const (
	StepBucket            = "bucket"
	StepEncryption        = "encryption"
	StepOwnership         = "ownership"
	StepACL               = "acl"
	StepCORS              = "cors"
	StepPolicy            = "policy"
	StepPublicAccessBlock = "publicAccessBlock"
	StepLifecycle         = "lifecycle"
	StepLogging           = "logging"
)

// ProviderName is the Pulumi resource name of the explicit AWS provider.
const ProviderName = "primary"

// NewPlan returns the provisioning plan for the given settings. Every configuration step uses the bucket's ID; the
// policy additionally depends on the bucket and the ownership controls.
func NewPlan(s Settings, provider pulumi.ProviderResource) (*plan.Plan, error) {
	request := func(env plan.Env) bucket.Request {
		b, ok := env.Results.Get(StepBucket).(*s3.BucketV2)
		contract.Assertf(ok, "bucket step has not produced a bucket")
		return bucket.Request{
			ID:        s.ResourceName,
			BucketID:  b.ID().ToStringOutput(),
			Provider:  provider,
			DependsOn: env.DependsOn,
		}
	}
	configure := func(name, typ string, apply func(*pulumi.Context, bucket.Request) (pulumi.Resource, error)) plan.Step {
		return plan.Step{
			Name: name,
			Type: typ,
			Uses: []string{StepBucket},
			Apply: func(ctx *pulumi.Context, env plan.Env) (pulumi.Resource, error) {
				return apply(ctx, request(env))
			},
		}
	}

	policy := configure(StepPolicy, "aws:s3/bucketPolicy:BucketPolicy",
		func(ctx *pulumi.Context, req bucket.Request) (pulumi.Resource, error) {
			return bucket.ConfigurePolicy(ctx, bucket.PolicyRequest{Request: req, BucketName: s.BucketName})
		})
	policy.DependsOn = []string{StepBucket, StepOwnership}

	return plan.New(
		plan.Step{
			Name: StepBucket,
			Type: "aws:s3/bucketV2:BucketV2",
			Apply: func(ctx *pulumi.Context, env plan.Env) (pulumi.Resource, error) {
				return bucket.Create(ctx, bucket.BucketRequest{
					ID:       s.ResourceName,
					Name:     s.BucketName,
					Tags:     s.Tags(),
					Provider: provider,
				})
			},
		},
		configure(StepEncryption,
			"aws:s3/bucketServerSideEncryptionConfigurationV2:BucketServerSideEncryptionConfigurationV2",
			func(ctx *pulumi.Context, req bucket.Request) (pulumi.Resource, error) {
				return bucket.ConfigureEncryption(ctx, req)
			}),
		configure(StepOwnership, "aws:s3/bucketOwnershipControls:BucketOwnershipControls",
			func(ctx *pulumi.Context, req bucket.Request) (pulumi.Resource, error) {
				return bucket.ConfigureOwnership(ctx, req)
			}),
		configure(StepACL, "aws:s3/bucketAclV2:BucketAclV2",
			func(ctx *pulumi.Context, req bucket.Request) (pulumi.Resource, error) {
				return bucket.ConfigureACL(ctx, req)
			}),
		configure(StepCORS, "aws:s3/bucketCorsConfigurationV2:BucketCorsConfigurationV2",
			func(ctx *pulumi.Context, req bucket.Request) (pulumi.Resource, error) {
				return bucket.ConfigureCORS(ctx, req, s.AllowedOrigins)
			}),
		policy,
		configure(StepPublicAccessBlock, "aws:s3/bucketPublicAccessBlock:BucketPublicAccessBlock",
			func(ctx *pulumi.Context, req bucket.Request) (pulumi.Resource, error) {
				return bucket.ConfigurePublicAccessBlock(ctx, req)
			}),
		configure(StepLifecycle, "aws:s3/bucketLifecycleConfigurationV2:BucketLifecycleConfigurationV2",
			func(ctx *pulumi.Context, req bucket.Request) (pulumi.Resource, error) {
				return bucket.ConfigureLifecycle(ctx, req)
			}),
		configure(StepLogging, "aws:s3/bucketLoggingV2:BucketLoggingV2",
			func(ctx *pulumi.Context, req bucket.Request) (pulumi.Resource, error) {
				return bucket.ConfigureLogging(ctx, req)
			}),
	)
}

// Provision declares the explicit AWS provider and applies the plan for s.
func Provision(ctx *pulumi.Context, s Settings) (*plan.Results, error) {
	provider, err := aws.NewProvider(ctx, ProviderName, &aws.ProviderArgs{
		Region: pulumi.String(s.Region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating AWS provider")
	}

	p, err := NewPlan(s, provider)
	if err != nil {
		return nil, err
	}

	logging.V(5).Infof("toolkit.Provision: bucket=%s region=%s stack=%s", s.BucketName, s.Region, s.Stack)
	return plan.Apply(ctx, p)
}

// Run is the program's pulumi.RunFunc.
func Run(ctx *pulumi.Context) error {
	s, err := LoadSettings(ctx)
	if err != nil {
		return err
	}

	results, err := Provision(ctx, s)
	if err != nil {
		return err
	}

	b := results.Get(StepBucket).(*s3.BucketV2)
	ctx.Export("bucketName", b.Bucket)
	ctx.Export("bucketArn", b.Arn)
	ctx.Export("bucketId", b.ID())
	return nil
}
