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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	PolicyVersion      = "2012-10-17"
	AccessLogsSid      = "S3ServerAccessLogsPolicy"
	LoggingServiceName = "logging.s3.amazonaws.com"

	conditionArnLike   = "ArnLike"
	conditionSourceArn = "aws:SourceArn"
)

// PolicyDocument is an IAM policy document attached to a bucket.
type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// PolicyStatement is a single statement of a PolicyDocument. Principal is either the string "*" or a map such as
// {"Service": "..."}.
type PolicyStatement struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    string                       `json:"Effect"`
	Principal interface{}                  `json:"Principal"`
	Action    StringList                   `json:"Action"`
	Resource  string                       `json:"Resource"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

// StringList is a JSON value that IAM accepts either as a single string or as an array of strings. It always
// marshals as an array.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// ARN returns the ARN of the named bucket.
func ARN(bucketName string) string {
	return "arn:aws:s3:::" + bucketName
}

// NewPolicyDocument returns the bucket policy: public read under PublicPrefix, and write access under
// AccessLogsPrefix for the S3 logging service when the request originates from this same bucket.
func NewPolicyDocument(bucketName string) PolicyDocument {
	arn := ARN(bucketName)
	return PolicyDocument{
		Version: PolicyVersion,
		Statement: []PolicyStatement{
			{
				Effect:    "Allow",
				Principal: "*",
				Action:    StringList{"s3:GetObject"},
				Resource:  fmt.Sprintf("%s/%s*", arn, PublicPrefix),
			},
			{
				Sid:       AccessLogsSid,
				Effect:    "Allow",
				Principal: map[string]string{"Service": LoggingServiceName},
				Action:    StringList{"s3:PutObject"},
				Resource:  fmt.Sprintf("%s/%s*", arn, strings.TrimSuffix(AccessLogsPrefix, "/")),
				Condition: map[string]map[string]string{
					conditionArnLike: {conditionSourceArn: arn},
				},
			},
		},
	}
}

// JSON renders the document as compact JSON.
func (d PolicyDocument) JSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", errors.Wrap(err, "marshaling bucket policy")
	}
	return string(b), nil
}

// ParsePolicyDocument decodes a policy document, e.g. one read back from S3.
func ParsePolicyDocument(text string) (PolicyDocument, error) {
	var d PolicyDocument
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return PolicyDocument{}, errors.Wrap(err, "parsing bucket policy")
	}
	return d, nil
}
