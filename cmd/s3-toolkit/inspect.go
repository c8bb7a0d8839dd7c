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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/cmdutil"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/spf13/cobra"

	"github.com/pulumi/s3-toolkit/pkg/bucket"
	"github.com/pulumi/s3-toolkit/pkg/graph/dotconv"
	"github.com/pulumi/s3-toolkit/pkg/plan"
	"github.com/pulumi/s3-toolkit/pkg/toolkit"
	"github.com/pulumi/s3-toolkit/pkg/verify"
)

// formatDOT renders the plan's graph instead of its description.
const formatDOT = "dot"

func newPlanCmd() *cobra.Command {
	var output string
	var step string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the provisioning steps and their dependencies",
		Long: "Print the provisioning steps and their dependencies.\n" +
			"\n" +
			"Steps are listed in the order they are registered. \"uses\" names the steps whose\n" +
			"outputs a step reads; \"dependsOn\" names explicit ordering dependencies. With --step,\n" +
			"only the named step and the steps it needs are listed.",
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := toolkit.NewPlan(toolkit.DefaultSettings(), nil)
			if err != nil {
				return err
			}
			if output == formatDOT {
				return dotconv.Print(p.Graph(), cmd.OutOrStdout())
			}

			d, err := p.Describe()
			if err != nil {
				return err
			}
			if step != "" {
				if _, has := p.Step(step); !has {
					return errors.Errorf("unknown step %q", step)
				}
				keep := map[string]bool{step: true}
				for _, dep := range p.DependenciesOf(step) {
					keep[dep] = true
				}
				var steps []plan.StepDescription
				for _, s := range d.Steps {
					if keep[s.Name] {
						steps = append(steps, s)
					}
				}
				d.Steps = steps
			}
			return plan.Encode(cmd.OutOrStdout(), d, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", plan.FormatYAML,
		fmt.Sprintf("Output format (%s, %s or %s)", plan.FormatYAML, plan.FormatJSON, formatDOT))
	cmd.Flags().StringVar(&step, "step", "", "Only show the named step and its dependencies")
	return cmd
}

func newPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy <bucket-name>",
		Short: "Print the bucket policy attached to the named bucket",
		Args:  cmdutil.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := bucket.NewPolicyDocument(args[0]).JSON()
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err = json.Indent(&out, []byte(text), "", "  "); err != nil {
				return errors.Wrap(err, "formatting bucket policy")
			}
			out.WriteByte('\n')
			_, err = out.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

// newVerifier is replaced in tests.
var newVerifier = func(ctx context.Context, opts verify.Options) (*verify.Verifier, error) {
	return verify.New(ctx, opts)
}

func newVerifyCmd() *cobra.Command {
	var opts verify.Options
	var bucketName string
	var allowedOrigins []string
	var stack, project, app string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare a provisioned bucket's live configuration with the declared one",
		Long: "Compare a provisioned bucket's live configuration with the declared one.\n" +
			"\n" +
			"Credentials and region come from the default AWS configuration chain unless given\n" +
			"as flags. Tags are only checked when --stack and --project are set. The command\n" +
			"exits non-zero when any difference is found.",
		Args: cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, err := newVerifier(ctx, opts)
			if err != nil {
				return err
			}

			want := verify.Expected(bucketName, allowedOrigins)
			if stack != "" && project != "" {
				want.Tags = bucket.Tags{Stack: stack, Project: project, App: app}.For(bucketName)
			}

			drift, err := v.Verify(ctx, want)
			for _, d := range drift {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			if err != nil {
				return err
			}
			if len(drift) > 0 {
				return errors.Errorf("bucket %q has drifted from its declared configuration (%d differences)",
					bucketName, len(drift))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bucket %q matches its declared configuration\n", bucketName)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucketName, "bucket", "", "The physical name of the bucket to verify")
	contract.AssertNoErrorf(cmd.MarkFlagRequired("bucket"), "marking --bucket as required")
	cmd.Flags().StringArrayVar(&allowedOrigins, "allowed-origin", nil,
		"An origin the CORS rule should allow; may be repeated")
	cmd.Flags().StringVar(&stack, "stack", "", "The expected PROJECT_STACK tag")
	cmd.Flags().StringVar(&project, "project", "", "The expected PROJECT tag")
	cmd.Flags().StringVar(&app, "app", bucket.DefaultApp, "The expected APP tag")
	cmd.Flags().StringVar(&opts.Region, "region", "", "The AWS region of the bucket")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "A custom S3 endpoint URL")
	cmd.Flags().BoolVar(&opts.UsePathStyle, "path-style", false, "Use path-style addressing")
	cmd.Flags().StringVar(&opts.AccessKeyID, "access-key-id", "", "A static access key ID")
	cmd.Flags().StringVar(&opts.SecretAccessKey, "secret-access-key", "", "A static secret access key")
	return cmd
}
