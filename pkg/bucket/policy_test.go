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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPolicyDocumentShape(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		name := bucketNames().Draw(t, "name")

		text, err := NewPolicyDocument(name).JSON()
		require.NoError(t, err)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(text), &raw), "policy must be valid JSON")
		assert.Equal(t, "2012-10-17", raw["Version"])

		statements, ok := raw["Statement"].([]interface{})
		require.True(t, ok)
		require.Len(t, statements, 2)

		public := statements[0].(map[string]interface{})
		assert.Equal(t, "Allow", public["Effect"])
		assert.Equal(t, "*", public["Principal"])
		assert.Equal(t, []interface{}{"s3:GetObject"}, public["Action"])
		assert.Equal(t, "arn:aws:s3:::"+name+"/public/*", public["Resource"])
		assert.NotContains(t, public, "Condition")
		assert.NotContains(t, public, "Sid")

		logs := statements[1].(map[string]interface{})
		assert.Equal(t, "S3ServerAccessLogsPolicy", logs["Sid"])
		assert.Equal(t, "Allow", logs["Effect"])
		assert.Equal(t, map[string]interface{}{"Service": "logging.s3.amazonaws.com"}, logs["Principal"])
		assert.Equal(t, []interface{}{"s3:PutObject"}, logs["Action"])
		assert.Equal(t, "arn:aws:s3:::"+name+"/server-access-logs*", logs["Resource"])
		assert.Equal(t, map[string]interface{}{
			"ArnLike": map[string]interface{}{"aws:SourceArn": "arn:aws:s3:::" + name},
		}, logs["Condition"])
	})
}

func TestPolicyDocumentExample(t *testing.T) {
	t.Parallel()

	text, err := NewPolicyDocument("example-bucket").JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": "*",
				"Action": ["s3:GetObject"],
				"Resource": "arn:aws:s3:::example-bucket/public/*"
			},
			{
				"Sid": "S3ServerAccessLogsPolicy",
				"Effect": "Allow",
				"Principal": {"Service": "logging.s3.amazonaws.com"},
				"Action": ["s3:PutObject"],
				"Resource": "arn:aws:s3:::example-bucket/server-access-logs*",
				"Condition": {"ArnLike": {"aws:SourceArn": "arn:aws:s3:::example-bucket"}}
			}
		]
	}`, text)
}

func TestParsePolicyDocumentAcceptsScalarAction(t *testing.T) {
	t.Parallel()

	doc, err := ParsePolicyDocument(`{
		"Version": "2012-10-17",
		"Statement": [{"Effect": "Allow", "Principal": "*", "Action": "s3:GetObject", "Resource": "r"}]
	}`)
	require.NoError(t, err)
	require.Len(t, doc.Statement, 1)
	assert.Equal(t, StringList{"s3:GetObject"}, doc.Statement[0].Action)
}

func TestParsePolicyDocumentRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParsePolicyDocument("{not json")
	assert.ErrorContains(t, err, "parsing bucket policy")
}
