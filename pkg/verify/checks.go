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

package verify

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"

	"github.com/pulumi/s3-toolkit/pkg/bucket"
)

const missing = "<not configured>"

// notConfigured lists the error codes S3 returns when a bucket has no configuration of the requested kind.
var notConfigured = map[string]bool{
	"ServerSideEncryptionConfigurationNotFoundError": true,
	"OwnershipControlsNotFoundError":                 true,
	"NoSuchCORSConfiguration":                        true,
	"NoSuchBucketPolicy":                             true,
	"NoSuchPublicAccessBlockConfiguration":           true,
	"NoSuchLifecycleConfiguration":                   true,
	"NoSuchTagSet":                                   true,
}

func isNotConfigured(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && notConfigured[apiErr.ErrorCode()]
}

func compare(field string, want, got interface{}) []Drift {
	if reflect.DeepEqual(want, got) {
		return nil
	}
	return []Drift{{Field: field, Want: fmt.Sprint(want), Got: fmt.Sprint(got)}}
}

func (v *Verifier) checkEncryption(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	out, err := v.client.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(name)})
	if isNotConfigured(err) {
		return []Drift{{Field: "encryption", Want: want.SSEAlgorithm, Got: missing}}, nil
	} else if err != nil {
		return nil, err
	}

	var algorithms []string
	if c := out.ServerSideEncryptionConfiguration; c != nil {
		for _, r := range c.Rules {
			if r.ApplyServerSideEncryptionByDefault != nil {
				algorithms = append(algorithms, string(r.ApplyServerSideEncryptionByDefault.SSEAlgorithm))
			}
		}
	}
	return compare("encryption.sseAlgorithm", []string{want.SSEAlgorithm}, algorithms), nil
}

func (v *Verifier) checkOwnership(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	out, err := v.client.GetBucketOwnershipControls(ctx,
		&s3.GetBucketOwnershipControlsInput{Bucket: aws.String(name)})
	if isNotConfigured(err) {
		return []Drift{{Field: "ownership", Want: want.ObjectOwnership, Got: missing}}, nil
	} else if err != nil {
		return nil, err
	}

	var modes []string
	if c := out.OwnershipControls; c != nil {
		for _, r := range c.Rules {
			modes = append(modes, string(r.ObjectOwnership))
		}
	}
	return compare("ownership.objectOwnership", []string{want.ObjectOwnership}, modes), nil
}

// checkACL accepts the canned private ACL: a single FULL_CONTROL grant to the bucket owner.
func (v *Verifier) checkACL(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	out, err := v.client.GetBucketAcl(ctx, &s3.GetBucketAclInput{Bucket: aws.String(name)})
	if err != nil {
		return nil, err
	}

	var owner string
	if out.Owner != nil {
		owner = aws.ToString(out.Owner.ID)
	}
	var extra []string
	for _, g := range out.Grants {
		if g.Grantee != nil && g.Grantee.Type == types.TypeCanonicalUser && aws.ToString(g.Grantee.ID) == owner &&
			g.Permission == types.PermissionFullControl {
			continue
		}
		grantee := "<nil>"
		if g.Grantee != nil {
			grantee = aws.ToString(g.Grantee.ID) + aws.ToString(g.Grantee.URI)
		}
		extra = append(extra, fmt.Sprintf("%s:%s", grantee, g.Permission))
	}
	if len(extra) > 0 {
		return []Drift{{Field: "acl", Want: bucket.CannedACL, Got: strings.Join(extra, ",")}}, nil
	}
	return nil, nil
}

func (v *Verifier) checkCORS(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	out, err := v.client.GetBucketCors(ctx, &s3.GetBucketCorsInput{Bucket: aws.String(name)})
	if isNotConfigured(err) {
		return []Drift{{Field: "cors", Want: fmt.Sprint(want.CORS), Got: missing}}, nil
	} else if err != nil {
		return nil, err
	}
	if len(out.CORSRules) != 1 {
		return compare("cors.rules", 1, len(out.CORSRules)), nil
	}

	r := out.CORSRules[0]
	got := bucket.CORSRule{
		AllowedHeaders: sorted(r.AllowedHeaders),
		AllowedMethods: sorted(r.AllowedMethods),
		AllowedOrigins: sorted(r.AllowedOrigins),
		ExposeHeaders:  sorted(r.ExposeHeaders),
		MaxAgeSeconds:  int(aws.ToInt32(r.MaxAgeSeconds)),
	}
	w := want.CORS
	var drift []Drift
	drift = append(drift, compare("cors.allowedHeaders", sorted(w.AllowedHeaders), got.AllowedHeaders)...)
	drift = append(drift, compare("cors.allowedMethods", sorted(w.AllowedMethods), got.AllowedMethods)...)
	drift = append(drift, compare("cors.allowedOrigins", sorted(w.AllowedOrigins), got.AllowedOrigins)...)
	drift = append(drift, compare("cors.exposeHeaders", sorted(w.ExposeHeaders), got.ExposeHeaders)...)
	drift = append(drift, compare("cors.maxAgeSeconds", w.MaxAgeSeconds, got.MaxAgeSeconds)...)
	return drift, nil
}

// checkPolicy compares statements after a JSON round trip, so formatting and key order do not count as drift.
func (v *Verifier) checkPolicy(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	out, err := v.client.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{Bucket: aws.String(name)})
	if isNotConfigured(err) {
		statements := fmt.Sprintf("%d statements", len(want.Policy.Statement))
		return []Drift{{Field: "policy", Want: statements, Got: missing}}, nil
	} else if err != nil {
		return nil, err
	}

	got, err := bucket.ParsePolicyDocument(aws.ToString(out.Policy))
	if err != nil {
		return nil, err
	}
	wantText, err := want.Policy.JSON()
	if err != nil {
		return nil, err
	}
	normalized, err := bucket.ParsePolicyDocument(wantText)
	if err != nil {
		return nil, err
	}

	var drift []Drift
	drift = append(drift, compare("policy.version", normalized.Version, got.Version)...)
	if len(got.Statement) != len(normalized.Statement) {
		return append(drift, compare("policy.statements", len(normalized.Statement), len(got.Statement))...), nil
	}
	for i := range normalized.Statement {
		field := fmt.Sprintf("policy.statement[%d]", i)
		drift = append(drift, compare(field, normalized.Statement[i], got.Statement[i])...)
	}
	return drift, nil
}

func (v *Verifier) checkPublicAccessBlock(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	out, err := v.client.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(name)})
	if isNotConfigured(err) {
		return []Drift{{Field: "publicAccessBlock", Want: fmt.Sprint(want.PublicAccessBlock), Got: missing}}, nil
	} else if err != nil {
		return nil, err
	}

	var got bucket.PublicAccessBlock
	if c := out.PublicAccessBlockConfiguration; c != nil {
		got = bucket.PublicAccessBlock{
			BlockPublicAcls:       aws.ToBool(c.BlockPublicAcls),
			BlockPublicPolicy:     aws.ToBool(c.BlockPublicPolicy),
			IgnorePublicAcls:      aws.ToBool(c.IgnorePublicAcls),
			RestrictPublicBuckets: aws.ToBool(c.RestrictPublicBuckets),
		}
	}
	w := want.PublicAccessBlock
	var drift []Drift
	drift = append(drift, compare("publicAccessBlock.blockPublicAcls", w.BlockPublicAcls, got.BlockPublicAcls)...)
	drift = append(drift, compare("publicAccessBlock.blockPublicPolicy", w.BlockPublicPolicy, got.BlockPublicPolicy)...)
	drift = append(drift, compare("publicAccessBlock.ignorePublicAcls", w.IgnorePublicAcls, got.IgnorePublicAcls)...)
	drift = append(drift,
		compare("publicAccessBlock.restrictPublicBuckets", w.RestrictPublicBuckets, got.RestrictPublicBuckets)...)
	return drift, nil
}

func (v *Verifier) checkLifecycle(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	out, err := v.client.GetBucketLifecycleConfiguration(ctx,
		&s3.GetBucketLifecycleConfigurationInput{Bucket: aws.String(name)})
	if isNotConfigured(err) {
		return []Drift{{Field: "lifecycle", Want: fmt.Sprint(want.Lifecycle), Got: missing}}, nil
	} else if err != nil {
		return nil, err
	}
	if len(out.Rules) != 1 {
		return compare("lifecycle.rules", 1, len(out.Rules)), nil
	}

	r := out.Rules[0]
	got := bucket.LifecycleRule{
		ID:     aws.ToString(r.ID),
		Status: string(r.Status),
	}
	if r.Filter != nil {
		got.Prefix = aws.ToString(r.Filter.Prefix)
	}
	if r.Expiration != nil {
		got.ExpirationDays = int(aws.ToInt32(r.Expiration.Days))
	}
	return compare("lifecycle.rule", want.Lifecycle, got), nil
}

// checkLogging expects the bucket to log into itself.
func (v *Verifier) checkLogging(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	out, err := v.client.GetBucketLogging(ctx, &s3.GetBucketLoggingInput{Bucket: aws.String(name)})
	if err != nil {
		return nil, err
	}
	if out.LoggingEnabled == nil {
		return []Drift{{Field: "logging", Want: name + "/" + want.LoggingPrefix, Got: missing}}, nil
	}

	var drift []Drift
	drift = append(drift, compare("logging.targetBucket", name, aws.ToString(out.LoggingEnabled.TargetBucket))...)
	drift = append(drift,
		compare("logging.targetPrefix", want.LoggingPrefix, aws.ToString(out.LoggingEnabled.TargetPrefix))...)
	return drift, nil
}

func (v *Verifier) checkTags(ctx context.Context, name string, want Expectation) ([]Drift, error) {
	if want.Tags == nil {
		return nil, nil
	}

	got := map[string]string{}
	out, err := v.client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(name)})
	if err != nil && !isNotConfigured(err) {
		return nil, err
	} else if err == nil {
		for _, t := range out.TagSet {
			got[aws.ToString(t.Key)] = aws.ToString(t.Value)
		}
	}

	keys := make([]string, 0, len(want.Tags))
	for k := range want.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var drift []Drift
	for _, k := range keys {
		value, ok := got[k]
		if !ok {
			drift = append(drift, Drift{Field: "tags." + k, Want: want.Tags[k], Got: missing})
			continue
		}
		drift = append(drift, compare("tags."+k, want.Tags[k], value)...)
	}
	return drift, nil
}

func sorted(values []string) []string {
	out := append([]string{}, values...)
	sort.Strings(out)
	return out
}
