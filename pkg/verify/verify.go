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

// Package verify reads a provisioned bucket back from S3 and reports where its live configuration differs from the
// configuration the toolkit declares.
package verify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"

	"github.com/pulumi/s3-toolkit/pkg/bucket"
)

// API is the subset of the S3 client the verifier reads through.
type API interface {
	GetBucketEncryption(
		ctx context.Context, params *s3.GetBucketEncryptionInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketEncryptionOutput, error)
	GetBucketOwnershipControls(
		ctx context.Context, params *s3.GetBucketOwnershipControlsInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketOwnershipControlsOutput, error)
	GetBucketAcl(
		ctx context.Context, params *s3.GetBucketAclInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketAclOutput, error)
	GetBucketCors(
		ctx context.Context, params *s3.GetBucketCorsInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketCorsOutput, error)
	GetBucketPolicy(
		ctx context.Context, params *s3.GetBucketPolicyInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketPolicyOutput, error)
	GetPublicAccessBlock(
		ctx context.Context, params *s3.GetPublicAccessBlockInput, optFns ...func(*s3.Options),
	) (*s3.GetPublicAccessBlockOutput, error)
	GetBucketLifecycleConfiguration(
		ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketLifecycleConfigurationOutput, error)
	GetBucketLogging(
		ctx context.Context, params *s3.GetBucketLoggingInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketLoggingOutput, error)
	GetBucketTagging(
		ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketTaggingOutput, error)
}

// Options configures the S3 client built by New. Zero values fall back to the default AWS credential chain and
// endpoint resolution.
type Options struct {
	Region          string
	Endpoint        string // e.g. a LocalStack or other S3-compatible endpoint.
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// Verifier compares live bucket configuration against an Expectation.
type Verifier struct {
	client API
}

// New returns a Verifier backed by a real S3 client.
func New(ctx context.Context, opts Options) (*Verifier, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return NewWithClient(client), nil
}

// NewWithClient returns a Verifier that reads through the given client.
func NewWithClient(client API) *Verifier {
	return &Verifier{client: client}
}

// Drift is one difference between the declared and the live configuration.
type Drift struct {
	Field string
	Want  string
	Got   string
}

func (d Drift) String() string {
	return fmt.Sprintf("%s: want %s, got %s", d.Field, d.Want, d.Got)
}

// Expectation is the declared configuration of one bucket.
type Expectation struct {
	BucketName        string
	SSEAlgorithm      string
	ObjectOwnership   string
	CORS              bucket.CORSRule
	Policy            bucket.PolicyDocument
	PublicAccessBlock bucket.PublicAccessBlock
	Lifecycle         bucket.LifecycleRule
	LoggingPrefix     string

	// Tags, when non-nil, must all be present on the bucket with these values.
	Tags map[string]string
}

// Expected returns the expectation for a bucket provisioned with the given name and CORS allow-list.
func Expected(bucketName string, origins []string) Expectation {
	return Expectation{
		BucketName:        bucketName,
		SSEAlgorithm:      bucket.SSEAlgorithm,
		ObjectOwnership:   bucket.ObjectOwnership,
		CORS:              bucket.NewCORSRule(origins),
		Policy:            bucket.NewPolicyDocument(bucketName),
		PublicAccessBlock: bucket.NewPublicAccessBlock(),
		Lifecycle:         bucket.NewLifecycleRule(),
		LoggingPrefix:     bucket.AccessLogsPrefix,
	}
}

type check func(ctx context.Context, name string, want Expectation) ([]Drift, error)

// Verify reads every configuration aspect of the bucket and returns the differences found. Read failures other than
// "not configured" are collected and returned together with whatever drift the remaining reads produced.
func (v *Verifier) Verify(ctx context.Context, want Expectation) ([]Drift, error) {
	checks := []struct {
		name string
		run  check
	}{
		{"encryption", v.checkEncryption},
		{"ownership", v.checkOwnership},
		{"acl", v.checkACL},
		{"cors", v.checkCORS},
		{"policy", v.checkPolicy},
		{"publicAccessBlock", v.checkPublicAccessBlock},
		{"lifecycle", v.checkLifecycle},
		{"logging", v.checkLogging},
		{"tags", v.checkTags},
	}

	var drift []Drift
	var result error
	for _, c := range checks {
		logging.V(7).Infof("verify.Verify(%s): checking %s", want.BucketName, c.name)
		d, err := c.run(ctx, want.BucketName, want)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "reading %s of %q", c.name, want.BucketName))
			continue
		}
		drift = append(drift, d...)
	}
	logging.V(5).Infof("verify.Verify(%s): %d differences", want.BucketName, len(drift))
	return drift, result
}
