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
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCORSRule(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		origins := rapid.SliceOf(rapid.StringMatching(`https://[a-z]{1,10}\.example\.com`)).Draw(t, "origins")

		rule := NewCORSRule(origins)
		assert.ElementsMatch(t, []string{"GET", "PUT", "POST"}, rule.AllowedMethods)
		assert.Equal(t, []string{"*"}, rule.AllowedHeaders)
		assert.Equal(t, 3000, rule.MaxAgeSeconds)
		assert.Empty(t, rule.ExposeHeaders)
		if len(origins) == 0 {
			assert.Equal(t, DefaultAllowedOrigins, rule.AllowedOrigins)
		} else {
			assert.Equal(t, origins, rule.AllowedOrigins)
		}
	})
}

func TestCORSRuleCopiesOrigins(t *testing.T) {
	t.Parallel()

	origins := []string{"https://a.example.com"}
	rule := NewCORSRule(origins)
	origins[0] = "https://mutated.example.com"
	assert.Equal(t, []string{"https://a.example.com"}, rule.AllowedOrigins)

	rule = NewCORSRule(nil)
	rule.AllowedOrigins[0] = "https://mutated.example.com"
	assert.Equal(t, []string{"http://www.example.com"}, DefaultAllowedOrigins)
}

func TestLifecycleRule(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LifecycleRule{
		ID:             "exportFolder",
		Status:         "Enabled",
		Prefix:         "export-folder/",
		ExpirationDays: 3,
	}, NewLifecycleRule())
}

func TestPublicAccessBlock(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PublicAccessBlock{
		BlockPublicAcls:       true,
		BlockPublicPolicy:     true,
		IgnorePublicAcls:      true,
		RestrictPublicBuckets: false,
	}, NewPublicAccessBlock())
}
