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

package bucket

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// ConfigureEncryption turns on default server-side encryption with SSEAlgorithm.
func ConfigureEncryption(
	ctx *pulumi.Context, req Request,
) (*s3.BucketServerSideEncryptionConfigurationV2, error) {
	logging.V(7).Infof("bucket.ConfigureEncryption(%s): algorithm=%s", req.ID, SSEAlgorithm)

	byDefault := &s3.BucketServerSideEncryptionConfigurationV2RuleApplyServerSideEncryptionByDefaultArgs{
		SseAlgorithm: pulumi.String(SSEAlgorithm),
	}
	res, err := s3.NewBucketServerSideEncryptionConfigurationV2(ctx, req.ID,
		&s3.BucketServerSideEncryptionConfigurationV2Args{
			Bucket: req.BucketID,
			Rules: s3.BucketServerSideEncryptionConfigurationV2RuleArray{
				&s3.BucketServerSideEncryptionConfigurationV2RuleArgs{
					ApplyServerSideEncryptionByDefault: byDefault,
				},
			},
		}, req.options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring encryption for %q", req.ID)
	}
	return res, nil
}

// ConfigureOwnership sets the object-ownership mode. The bucket policy must be ordered after this resource.
func ConfigureOwnership(ctx *pulumi.Context, req Request) (*s3.BucketOwnershipControls, error) {
	logging.V(7).Infof("bucket.ConfigureOwnership(%s): ownership=%s", req.ID, ObjectOwnership)

	res, err := s3.NewBucketOwnershipControls(ctx, req.ID, &s3.BucketOwnershipControlsArgs{
		Bucket: req.BucketID,
		Rule: &s3.BucketOwnershipControlsRuleArgs{
			ObjectOwnership: pulumi.String(ObjectOwnership),
		},
	}, req.options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring ownership controls for %q", req.ID)
	}
	return res, nil
}

// ConfigureACL applies the private canned ACL.
func ConfigureACL(ctx *pulumi.Context, req Request) (*s3.BucketAclV2, error) {
	logging.V(7).Infof("bucket.ConfigureACL(%s): acl=%s", req.ID, CannedACL)

	res, err := s3.NewBucketAclV2(ctx, req.ID, &s3.BucketAclV2Args{
		Bucket: req.BucketID,
		Acl:    pulumi.String(CannedACL),
	}, req.options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring ACL for %q", req.ID)
	}
	return res, nil
}

// ConfigureCORS attaches a single CORS rule built by NewCORSRule for the given origins.
func ConfigureCORS(ctx *pulumi.Context, req Request, origins []string) (*s3.BucketCorsConfigurationV2, error) {
	rule := NewCORSRule(origins)
	logging.V(7).Infof("bucket.ConfigureCORS(%s): origins=%v", req.ID, rule.AllowedOrigins)

	res, err := s3.NewBucketCorsConfigurationV2(ctx, req.ID, &s3.BucketCorsConfigurationV2Args{
		Bucket: req.BucketID,
		CorsRules: s3.BucketCorsConfigurationV2CorsRuleArray{
			&s3.BucketCorsConfigurationV2CorsRuleArgs{
				AllowedHeaders: pulumi.ToStringArray(rule.AllowedHeaders),
				AllowedMethods: pulumi.ToStringArray(rule.AllowedMethods),
				AllowedOrigins: pulumi.ToStringArray(rule.AllowedOrigins),
				ExposeHeaders:  pulumi.ToStringArray(rule.ExposeHeaders),
				MaxAgeSeconds:  pulumi.Int(rule.MaxAgeSeconds),
			},
		},
	}, req.options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring CORS for %q", req.ID)
	}
	return res, nil
}

// ConfigurePolicy attaches the document built by NewPolicyDocument. req.DependsOn is forwarded to the engine so the
// policy is not applied ahead of the ownership and ACL settings it is evaluated against.
func ConfigurePolicy(ctx *pulumi.Context, req PolicyRequest) (*s3.BucketPolicy, error) {
	contract.Requiref(req.BucketName != "", "req.BucketName", "must not be empty")
	logging.V(7).Infof("bucket.ConfigurePolicy(%s): bucket=%s dependsOn=%d", req.ID, req.BucketName, len(req.DependsOn))

	doc, err := NewPolicyDocument(req.BucketName).JSON()
	if err != nil {
		return nil, err
	}
	res, err := s3.NewBucketPolicy(ctx, req.ID, &s3.BucketPolicyArgs{
		Bucket: req.BucketID,
		Policy: pulumi.String(doc),
	}, req.options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring policy for %q", req.ID)
	}
	return res, nil
}

// ConfigurePublicAccessBlock applies NewPublicAccessBlock. Because public buckets are not restricted, it also warns
// through the engine that objects under PublicPrefix are readable by anyone.
func ConfigurePublicAccessBlock(ctx *pulumi.Context, req Request) (*s3.BucketPublicAccessBlock, error) {
	block := NewPublicAccessBlock()
	logging.V(7).Infof("bucket.ConfigurePublicAccessBlock(%s): %+v", req.ID, block)

	res, err := s3.NewBucketPublicAccessBlock(ctx, req.ID, &s3.BucketPublicAccessBlockArgs{
		Bucket:                req.BucketID,
		BlockPublicAcls:       pulumi.Bool(block.BlockPublicAcls),
		BlockPublicPolicy:     pulumi.Bool(block.BlockPublicPolicy),
		IgnorePublicAcls:      pulumi.Bool(block.IgnorePublicAcls),
		RestrictPublicBuckets: pulumi.Bool(block.RestrictPublicBuckets),
	}, req.options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring public access block for %q", req.ID)
	}

	if !block.RestrictPublicBuckets {
		msg := fmt.Sprintf("restrictPublicBuckets is false: objects under %q are publicly readable via the bucket policy",
			PublicPrefix)
		contract.IgnoreError(ctx.Log.Warn(msg, &pulumi.LogArgs{Resource: res}))
	}
	return res, nil
}

// ConfigureLifecycle attaches the single rule built by NewLifecycleRule.
func ConfigureLifecycle(ctx *pulumi.Context, req Request) (*s3.BucketLifecycleConfigurationV2, error) {
	rule := NewLifecycleRule()
	logging.V(7).Infof("bucket.ConfigureLifecycle(%s): %+v", req.ID, rule)

	res, err := s3.NewBucketLifecycleConfigurationV2(ctx, req.ID, &s3.BucketLifecycleConfigurationV2Args{
		Bucket: req.BucketID,
		Rules: s3.BucketLifecycleConfigurationV2RuleArray{
			&s3.BucketLifecycleConfigurationV2RuleArgs{
				Id:     pulumi.String(rule.ID),
				Status: pulumi.String(rule.Status),
				Expiration: &s3.BucketLifecycleConfigurationV2RuleExpirationArgs{
					Days: pulumi.Int(rule.ExpirationDays),
				},
				Filter: &s3.BucketLifecycleConfigurationV2RuleFilterArgs{
					Prefix: pulumi.String(rule.Prefix),
				},
			},
		},
	}, req.options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring lifecycle for %q", req.ID)
	}
	return res, nil
}

// ConfigureLogging delivers server access logs into the bucket itself, under AccessLogsPrefix.
func ConfigureLogging(ctx *pulumi.Context, req Request) (*s3.BucketLoggingV2, error) {
	logging.V(7).Infof("bucket.ConfigureLogging(%s): prefix=%s", req.ID, AccessLogsPrefix)

	res, err := s3.NewBucketLoggingV2(ctx, req.ID, &s3.BucketLoggingV2Args{
		Bucket:       req.BucketID,
		TargetBucket: req.BucketID,
		TargetPrefix: pulumi.String(AccessLogsPrefix),
	}, req.options()...)
	if err != nil {
		return nil, errors.Wrapf(err, "configuring logging for %q", req.ID)
	}
	return res, nil
}
