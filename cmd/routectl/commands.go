// Copyright 2025 The Rivaas Authors
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
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rivaas.dev/routing"
	"rivaas.dev/routing/config"
	"rivaas.dev/routing/config/codec"
)

func printCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the route trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := g.build()
			if err != nil {
				return err
			}
			return r.PrettyPrint(cmd.OutOrStdout())
		},
	}
}

func routesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List registered routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := g.build()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tPATTERN\tHANDLER\tCONSTRAINTS")
			for _, info := range r.Routes() {
				cs := make([]string, 0, len(info.Constraints))
				for _, k := range sortedKeys(info.Constraints) {
					cs = append(cs, k+"="+info.Constraints[k])
				}
				constraints := strings.Join(cs, ",")
				if constraints == "" {
					constraints = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Method, info.Pattern, info.HandlerName, constraints)
			}
			return tw.Flush()
		},
	}
}

func lookupCmd(g *globals) *cobra.Command {
	var (
		host        string
		headers     []string
		constraints []string
	)

	cmd := &cobra.Command{
		Use:   "lookup METHOD PATH",
		Short: "Show which route a request selects",
		Long: `Show which route a request selects.

Constraint values are derived from a synthetic request built from --host
and --header, or given directly with --constraint, which skips derivation.

Examples:
  routectl lookup GET /users/42
  routectl lookup GET /items --header Accept-Version=1.x
  routectl lookup GET / --constraint host=api.example.com`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, path := strings.ToUpper(args[0]), args[1]
			hdrs, err := parsePairs("header", headers)
			if err != nil {
				return err
			}
			derived, err := parsePairs("constraint", constraints)
			if err != nil {
				return err
			}

			r, err := g.build()
			if err != nil {
				return err
			}

			var (
				m  routing.Match
				ok bool
			)
			if derived != nil {
				m, ok = r.Find(method, path, derived)
			} else {
				req, err := http.NewRequestWithContext(cmd.Context(), method, "http://localhost/", nil)
				if err != nil {
					return err
				}
				if host != "" {
					req.Host = host
				}
				for k, v := range hdrs {
					req.Header.Set(k, v)
				}
				m, ok = r.Lookup(method, path, req)
			}
			if !ok {
				return fmt.Errorf("no route matches %s %s", method, path)
			}
			writeMatch(cmd.OutOrStdout(), m)
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "request host")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "request header as Name=value (repeatable)")
	cmd.Flags().StringArrayVar(&constraints, "constraint", nil, "derived constraint value as key=value (repeatable)")
	return cmd
}

func convertCmd(g *globals) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Re-encode the route table in another format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := g.load()
			if err != nil {
				return err
			}
			b, err := config.Encode(f, codec.Type(to))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	cmd.Flags().StringVar(&to, "to", string(codec.TypeYAML), "output format: yaml, toml or json")
	return cmd
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, version)
				return
			}
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", commit)
			fmt.Fprintf(out, "Built:      %s\n", date)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}

func writeMatch(w io.Writer, m routing.Match) {
	fmt.Fprintf(w, "handler: %s\n", m.Route.Info().HandlerName)
	fmt.Fprintf(w, "pattern: %s %s\n", m.Route.Method, m.Route.Pattern)
	for _, k := range sortedKeys(m.Params) {
		fmt.Fprintf(w, "param:   %s=%s\n", k, m.Params[k])
	}
}
