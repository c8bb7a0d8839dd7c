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

// Fixed parameters applied by the configuration operations.
const (
	SSEAlgorithm    = "AES256"
	ObjectOwnership = "BucketOwnerPreferred"
	CannedACL       = "private"

	PublicPrefix     = "public/"
	AccessLogsPrefix = "server-access-logs/"

	ExportFolderPrefix   = "export-folder/"
	ExportFolderRuleID   = "exportFolder"
	ExportFolderTTLDays  = 3
	LifecycleRuleEnabled = "Enabled"

	CORSMaxAgeSeconds = 3000
)

// DefaultAllowedOrigins is the CORS allow-list used when none is configured.
var DefaultAllowedOrigins = []string{"http://www.example.com"}

// CORSRule is the plain form of the single CORS rule attached to a bucket.
type CORSRule struct {
	AllowedHeaders []string
	AllowedMethods []string
	AllowedOrigins []string
	ExposeHeaders  []string
	MaxAgeSeconds  int
}

// NewCORSRule returns the CORS rule for the given origin allow-list. A nil or empty allow-list falls back to
// DefaultAllowedOrigins.
func NewCORSRule(origins []string) CORSRule {
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	return CORSRule{
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "POST"},
		AllowedOrigins: append([]string(nil), origins...),
		ExposeHeaders:  []string{},
		MaxAgeSeconds:  CORSMaxAgeSeconds,
	}
}

// LifecycleRule is the plain form of the single lifecycle rule attached to a bucket.
type LifecycleRule struct {
	ID             string
	Status         string
	Prefix         string
	ExpirationDays int
}

// NewLifecycleRule returns the rule that expires exported objects.
func NewLifecycleRule() LifecycleRule {
	return LifecycleRule{
		ID:             ExportFolderRuleID,
		Status:         LifecycleRuleEnabled,
		Prefix:         ExportFolderPrefix,
		ExpirationDays: ExportFolderTTLDays,
	}
}

// PublicAccessBlock is the plain form of the bucket's public-access guardrail.
//
// RestrictPublicBuckets stays false so the public-read grant on PublicPrefix in the bucket policy takes effect.
type PublicAccessBlock struct {
	BlockPublicAcls       bool
	BlockPublicPolicy     bool
	IgnorePublicAcls      bool
	RestrictPublicBuckets bool
}

// NewPublicAccessBlock returns the public-access block settings.
func NewPublicAccessBlock() PublicAccessBlock {
	return PublicAccessBlock{
		BlockPublicAcls:       true,
		BlockPublicPolicy:     true,
		IgnorePublicAcls:      true,
		RestrictPublicBuckets: false,
	}
}
