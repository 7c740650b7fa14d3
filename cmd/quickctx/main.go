/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package main provides the quickctx binary. It loads registrations from a
// quick.yaml file and queries or renders templates against them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/suparena/quickcontext"
	"github.com/suparena/quickcontext/config"
	"github.com/suparena/quickcontext/render"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const appName = "quickctx"

type app struct {
	configPath string
	debug      bool
	newFactory func(ctx context.Context, aws config.AWSConfig, logger *slog.Logger) (config.StoreFactory, error)
}

func main() {
	a := &app{newFactory: config.DynamoDBFactory}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Query and render registered context entries",
		Long: `quickctx loads the entries declared in quick.yaml and resolves them
the way templates do: quick.<name>.<value> for a single record and
quick.<name>.filter__<field>.<value> for a filtered collection.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (default: quick.yaml if present)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(a.namesCmd(), a.getCmd(), a.filterCmd(), a.renderCmd(), versionCmd())
	return cmd
}

// load builds the registry described by the config file.
func (a *app) load(cmd *cobra.Command) (*quickcontext.Registry, error) {
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := config.NewLoader(logger).Load(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	reg := quickcontext.NewRegistry(quickcontext.WithLogger(logger))

	var factory config.StoreFactory
	if len(cfg.Entries) > 0 {
		factory, err = a.newFactory(ctx, cfg.AWS, logger)
		if err != nil {
			return nil, err
		}
	}
	if err := config.Apply(ctx, cfg, reg, factory); err != nil {
		return nil, err
	}

	logger.Debug("Registry ready", slog.Int("entries", reg.Len()))
	return reg, nil
}

func (a *app) namesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List registered names in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range reg.Names() {
				v, _ := reg.Lookup(name)
				if entry, ok := v.(quickcontext.Entry); ok {
					fmt.Fprintf(out, "%s\tmodel\tlookup=%s\n", name, entry.LookupField())
					continue
				}
				fmt.Fprintf(out, "%s\tvalue\n", name)
			}
			return nil
		},
	}
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name> [value]",
		Short: "Print a registered value, or the record whose lookup field equals value",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.load(cmd)
			if err != nil {
				return err
			}
			result, _, err := reg.ResolvePath(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			if _, ok := result.(quickcontext.Entry); ok {
				return fmt.Errorf("%s is a model entry; a lookup value is required", args[0])
			}
			return printJSON(cmd, result)
		},
	}
}

func (a *app) filterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <name> <field> <value>",
		Short: "Print the records matching lookup_field__field == value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.load(cmd)
			if err != nil {
				return err
			}
			result, _, err := reg.ResolvePath(cmd.Context(), args[0], quickcontext.FilterPrefix+args[1], args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}

func (a *app) renderCmd() *cobra.Command {
	var (
		expr string
		vars map[string]string
	)

	cmd := &cobra.Command{
		Use:   "render [template-file]",
		Short: "Render an HCL template file, or evaluate one expression with --expr",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (expr == "") == (len(args) == 0) {
				return fmt.Errorf("exactly one of a template file or --expr is required")
			}

			reg, err := a.load(cmd)
			if err != nil {
				return err
			}

			variables := make(map[string]cty.Value, len(vars))
			for k, v := range vars {
				variables[k] = cty.StringVal(v)
			}
			r := render.New(reg, render.WithVariables(variables))

			if expr != "" {
				val, err := r.EvalExpression(cmd.Context(), expr)
				if err != nil {
					return err
				}
				s, err := formatValue(val)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out, err := r.RenderTemplate(cmd.Context(), args[0], string(src))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "Expression to evaluate instead of a template file")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "Extra string variables, as name=value")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := quickcontext.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s version %s\n", appName, info.Version)
			fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// formatValue prints strings bare and everything else as JSON.
func formatValue(v cty.Value) (string, error) {
	switch {
	case v.IsNull():
		return "null", nil
	case v.Type() == cty.String:
		return v.AsString(), nil
	}
	data, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
