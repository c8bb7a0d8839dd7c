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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/apitype"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/cmdutil"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/spf13/cobra"

	"github.com/pulumi/s3-toolkit/pkg/toolkit"
)

const (
	projectName      = "s3-toolkit"
	awsPluginVersion = "v6.66.0"
)

// stackFlags are the flags shared by the commands that drive a Pulumi stack.
type stackFlags struct {
	stack          string
	resourceName   string
	bucketName     string
	region         string
	app            string
	allowedOrigins []string
}

func (f *stackFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.stack, "stack", "s", "dev",
		"The name of the stack to operate on")
	cmd.Flags().StringVar(&f.resourceName, "resource-name", "",
		"The Pulumi resource name shared by the bucket and its configuration")
	cmd.Flags().StringVar(&f.bucketName, "bucket-name", "",
		"The physical name of the bucket")
	cmd.Flags().StringVar(&f.region, "region", "",
		"The AWS region to provision in")
	cmd.Flags().StringVar(&f.app, "app", "",
		"The value of the APP tag")
	cmd.Flags().StringArrayVar(&f.allowedOrigins, "allowed-origin", nil,
		"An origin allowed by the bucket's CORS rule; may be repeated")
}

// config returns the stack configuration implied by the flags. Unset flags leave the stack's existing values alone.
func (f *stackFlags) config() (auto.ConfigMap, error) {
	cfg := auto.ConfigMap{}
	set := func(key, value string) {
		if value != "" {
			cfg[toolkit.ConfigNamespace+":"+key] = auto.ConfigValue{Value: value}
		}
	}
	set(toolkit.KeyResourceName, f.resourceName)
	set(toolkit.KeyBucketName, f.bucketName)
	set(toolkit.KeyRegion, f.region)
	set(toolkit.KeyApp, f.app)
	if len(f.allowedOrigins) > 0 {
		b, err := json.Marshal(f.allowedOrigins)
		if err != nil {
			return nil, errors.Wrap(err, "encoding allowed origins")
		}
		set(toolkit.KeyAllowedOrigins, string(b))
	}
	return cfg, nil
}

// selectStack creates or selects the inline stack, installs the AWS plugin and writes the flag configuration.
func (f *stackFlags) selectStack(ctx context.Context) (auto.Stack, error) {
	logging.V(5).Infof("selecting stack %s/%s", projectName, f.stack)
	s, err := auto.UpsertStackInlineSource(ctx, f.stack, projectName, toolkit.Run)
	if err != nil {
		return auto.Stack{}, errors.Wrapf(err, "selecting stack %q", f.stack)
	}

	if err = s.Workspace().InstallPlugin(ctx, "aws", awsPluginVersion); err != nil {
		return auto.Stack{}, errors.Wrap(err, "installing the aws plugin")
	}

	cfg, err := f.config()
	if err != nil {
		return auto.Stack{}, err
	}
	if len(cfg) > 0 {
		if err = s.SetAllConfig(ctx, cfg); err != nil {
			return auto.Stack{}, errors.Wrap(err, "saving config")
		}
	}
	return s, nil
}

func newUpCmd() *cobra.Command {
	var flags stackFlags
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create or update the bucket and its configuration",
		Args:  cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := flags.selectStack(ctx)
			if err != nil {
				return err
			}

			res, err := s.Up(ctx, optup.ProgressStreams(cmd.OutOrStdout()))
			if err != nil {
				return errors.Wrap(err, "updating stack")
			}
			printOutputs(cmd.OutOrStdout(), res.Outputs)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var flags stackFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the changes an update would make",
		Args:  cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := flags.selectStack(ctx)
			if err != nil {
				return err
			}

			res, err := s.Preview(ctx, optpreview.ProgressStreams(cmd.OutOrStdout()))
			if err != nil {
				return errors.Wrap(err, "previewing stack")
			}
			printChangeSummary(cmd.OutOrStdout(), res.ChangeSummary)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newDestroyCmd() *cobra.Command {
	var flags stackFlags
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the bucket and its configuration",
		Args:  cmdutil.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := flags.selectStack(ctx)
			if err != nil {
				return err
			}

			res, err := s.Destroy(ctx, optdestroy.ProgressStreams(cmd.OutOrStdout()))
			if err != nil {
				return errors.Wrap(err, "destroying stack")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "destroy %s\n", res.Summary.Result)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func printOutputs(w io.Writer, outputs auto.OutputMap) {
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := outputs[k]
		if v.Secret {
			fmt.Fprintf(w, "%s: [secret]\n", k)
			continue
		}
		fmt.Fprintf(w, "%s: %v\n", k, v.Value)
	}
}

func printChangeSummary(w io.Writer, summary map[apitype.OpType]int) {
	ops := make([]string, 0, len(summary))
	for op := range summary {
		ops = append(ops, string(op))
	}
	sort.Strings(ops)

	for _, op := range ops {
		fmt.Fprintf(w, "%s: %d\n", op, summary[apitype.OpType(op)])
	}
}
