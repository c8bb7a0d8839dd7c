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
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws"
	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	typeBucket            = "aws:s3/bucketV2:BucketV2"
	typeEncryption        = "aws:s3/bucketServerSideEncryptionConfigurationV2:BucketServerSideEncryptionConfigurationV2"
	typeOwnership         = "aws:s3/bucketOwnershipControls:BucketOwnershipControls"
	typeACL               = "aws:s3/bucketAclV2:BucketAclV2"
	typeCORS              = "aws:s3/bucketCorsConfigurationV2:BucketCorsConfigurationV2"
	typePolicy            = "aws:s3/bucketPolicy:BucketPolicy"
	typePublicAccessBlock = "aws:s3/bucketPublicAccessBlock:BucketPublicAccessBlock"
	typeLifecycle         = "aws:s3/bucketLifecycleConfigurationV2:BucketLifecycleConfigurationV2"
	typeLogging           = "aws:s3/bucketLoggingV2:BucketLoggingV2"
	typeProvider          = "pulumi:providers:aws"
)

type testMonitor struct {
	NewResourceF func(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error)

	mu        sync.Mutex
	resources []pulumi.MockResourceArgs
}

func (m *testMonitor) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	return args.Args, nil
}

func (m *testMonitor) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	m.mu.Lock()
	m.resources = append(m.resources, args)
	m.mu.Unlock()

	if m.NewResourceF != nil {
		return m.NewResourceF(args)
	}
	return args.Name + "_id", args.Inputs, nil
}

// inputs returns the plain inputs of the only resource registered with the given type.
func (m *testMonitor) inputs(t *testing.T, typ string) map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []pulumi.MockResourceArgs
	for _, r := range m.resources {
		if r.TypeToken == typ {
			found = append(found, r)
		}
	}
	require.Len(t, found, 1, "resources of type %s", typ)
	return found[0].Inputs.Mappable()
}

func (m *testMonitor) provider(t *testing.T, typ string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.resources {
		if r.TypeToken == typ {
			return r.Provider
		}
	}
	t.Fatalf("no resource of type %s", typ)
	return ""
}

// lookup walks nested plain inputs by map key or array index.
func lookup(t *testing.T, v interface{}, path ...interface{}) interface{} {
	t.Helper()
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, ok := v.(map[string]interface{})
			require.True(t, ok, "expected an object at %q", k)
			v = m[k]
		case int:
			a, ok := v.([]interface{})
			require.True(t, ok, "expected an array at %d", k)
			require.Greater(t, len(a), k)
			v = a[k]
		}
	}
	return v
}

func bucketNames() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]`)
}

func TestTagsForBucket(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		name := bucketNames().Draw(t, "name")
		tags := Tags{
			Stack:   rapid.String().Draw(t, "stack"),
			Project: rapid.String().Draw(t, "project"),
			App:     rapid.String().Draw(t, "app"),
		}.For(name)

		keys := make([]string, 0, len(tags))
		for k := range tags {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, []string{TagStack, TagProject, TagApp, TagEnvironment, TagName}, keys)
		assert.Equal(t, name, tags[TagEnvironment])
		assert.Equal(t, name, tags[TagName])
	})
}

func TestTagsKeepEmptyValues(t *testing.T) {
	t.Parallel()

	tags := Tags{}.For("example-bucket")
	assert.Len(t, tags, 5)
	assert.Equal(t, "", tags[TagStack])
	assert.Equal(t, "", tags[TagProject])
	assert.Equal(t, "", tags[TagApp])
}

func TestCreate(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		provider, err := aws.NewProvider(ctx, "primary", &aws.ProviderArgs{Region: pulumi.String("us-east-1")})
		require.NoError(t, err)

		_, err = Create(ctx, BucketRequest{
			ID:       "random-id",
			Name:     "example-bucket",
			Tags:     Tags{Stack: "dev", Project: "s3-toolkit", App: DefaultApp},
			Provider: provider,
		})
		return err
	}, pulumi.WithMocks("s3-toolkit", "dev", mocks))
	require.NoError(t, err)

	in := mocks.inputs(t, typeBucket)
	assert.Equal(t, "example-bucket", in["bucket"])
	assert.Equal(t, false, in["objectLockEnabled"])
	assert.Equal(t, map[string]interface{}{
		"Environment":   "example-bucket",
		"Name":          "example-bucket",
		"PROJECT_STACK": "dev",
		"PROJECT":       "s3-toolkit",
		"APP":           "TEST_APP",
	}, in["tags"])
	assert.Contains(t, mocks.provider(t, typeBucket), typeProvider)
}

func TestCreateSurfacesEngineFailure(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{
		NewResourceF: func(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
			return "", nil, errors.New("BucketAlreadyExists")
		},
	}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := Create(ctx, BucketRequest{ID: "random-id", Name: "taken"})
		return err
	}, pulumi.WithMocks("s3-toolkit", "dev", mocks))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BucketAlreadyExists")
}

// configureAll registers a bucket and runs every configuration operation against it.
func configureAll(t *testing.T, mocks *testMonitor, origins []string) {
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		b, err := Create(ctx, BucketRequest{ID: "random-id", Name: "example-bucket"})
		require.NoError(t, err)

		req := Request{ID: "random-id", BucketID: b.ID().ToStringOutput()}

		_, err = ConfigureEncryption(ctx, req)
		require.NoError(t, err)
		ownership, err := ConfigureOwnership(ctx, req)
		require.NoError(t, err)
		_, err = ConfigureACL(ctx, req)
		require.NoError(t, err)
		_, err = ConfigureCORS(ctx, req, origins)
		require.NoError(t, err)

		policyReq := req
		policyReq.DependsOn = []pulumi.Resource{b, ownership}
		_, err = ConfigurePolicy(ctx, PolicyRequest{Request: policyReq, BucketName: "example-bucket"})
		require.NoError(t, err)

		_, err = ConfigurePublicAccessBlock(ctx, req)
		require.NoError(t, err)
		_, err = ConfigureLifecycle(ctx, req)
		require.NoError(t, err)
		_, err = ConfigureLogging(ctx, req)
		return err
	}, pulumi.WithMocks("s3-toolkit", "dev", mocks))
	require.NoError(t, err)
}

func TestConfigureEncryption(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	configureAll(t, mocks, nil)

	in := mocks.inputs(t, typeEncryption)
	assert.Equal(t, "random-id_id", in["bucket"])
	require.Len(t, in["rules"], 1)
	assert.Equal(t, "AES256", lookup(t, in, "rules", 0, "applyServerSideEncryptionByDefault", "sseAlgorithm"))
}

func TestConfigureOwnershipAndACL(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	configureAll(t, mocks, nil)

	ownership := mocks.inputs(t, typeOwnership)
	assert.Equal(t, "BucketOwnerPreferred", lookup(t, ownership, "rule", "objectOwnership"))

	acl := mocks.inputs(t, typeACL)
	assert.Equal(t, "random-id_id", acl["bucket"])
	assert.Equal(t, "private", acl["acl"])
}

func TestConfigureCORS(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	configureAll(t, mocks, []string{"https://app.example.com", "https://admin.example.com"})

	in := mocks.inputs(t, typeCORS)
	rules, ok := in["corsRules"].([]interface{})
	require.True(t, ok)
	require.Len(t, rules, 1)

	rule := rules[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"*"}, rule["allowedHeaders"])
	assert.Equal(t, []interface{}{"GET", "PUT", "POST"}, rule["allowedMethods"])
	assert.Equal(t, []interface{}{"https://app.example.com", "https://admin.example.com"}, rule["allowedOrigins"])
	assert.Equal(t, float64(3000), rule["maxAgeSeconds"])
}

func TestConfigurePolicy(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	configureAll(t, mocks, nil)

	in := mocks.inputs(t, typePolicy)
	assert.Equal(t, "random-id_id", in["bucket"])

	want, err := NewPolicyDocument("example-bucket").JSON()
	require.NoError(t, err)
	assert.JSONEq(t, want, in["policy"].(string))

	mocks.mu.Lock()
	defer mocks.mu.Unlock()
	var deps []string
	for _, r := range mocks.resources {
		if r.TypeToken == typePolicy {
			require.NotNil(t, r.RegisterRPC)
			deps = r.RegisterRPC.GetDependencies()
		}
	}
	require.Len(t, deps, 2)
	var depTypes []string
	for _, urn := range deps {
		depTypes = append(depTypes, string(resource.URN(urn).Type()))
	}
	assert.ElementsMatch(t, []string{
		"aws:s3/bucketV2:BucketV2",
		"aws:s3/bucketOwnershipControls:BucketOwnershipControls",
	}, depTypes)
}

func TestConfigurePublicAccessBlock(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	configureAll(t, mocks, nil)

	in := mocks.inputs(t, typePublicAccessBlock)
	assert.Equal(t, true, in["blockPublicAcls"])
	assert.Equal(t, true, in["blockPublicPolicy"])
	assert.Equal(t, true, in["ignorePublicAcls"])
	assert.Equal(t, false, in["restrictPublicBuckets"])
}

func TestConfigureLifecycle(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	configureAll(t, mocks, nil)

	in := mocks.inputs(t, typeLifecycle)
	require.Len(t, in["rules"], 1)
	assert.Equal(t, "exportFolder", lookup(t, in, "rules", 0, "id"))
	assert.Equal(t, "Enabled", lookup(t, in, "rules", 0, "status"))
	assert.Equal(t, float64(3), lookup(t, in, "rules", 0, "expiration", "days"))
	assert.Equal(t, "export-folder/", lookup(t, in, "rules", 0, "filter", "prefix"))
}

func TestConfigureLogging(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	configureAll(t, mocks, nil)

	in := mocks.inputs(t, typeLogging)
	assert.Equal(t, "random-id_id", in["bucket"])
	assert.Equal(t, "random-id_id", in["targetBucket"])
	assert.Equal(t, "server-access-logs/", in["targetPrefix"])
}

func TestConfigureForwardsProvider(t *testing.T) {
	t.Parallel()

	mocks := &testMonitor{}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		provider, err := aws.NewProvider(ctx, "primary", &aws.ProviderArgs{Region: pulumi.String("us-east-1")})
		require.NoError(t, err)

		_, err = ConfigureACL(ctx, Request{ID: "random-id", BucketID: pulumi.String("b"), Provider: provider})
		return err
	}, pulumi.WithMocks("s3-toolkit", "dev", mocks))
	require.NoError(t, err)

	p := mocks.provider(t, typeACL)
	assert.True(t, strings.HasPrefix(p, "urn:pulumi:dev::s3-toolkit::"+typeProvider+"::primary"), p)
}
