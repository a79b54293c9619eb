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
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"rivaas.dev/routing"
	"rivaas.dev/routing/config"
)

// configEnv names the variable that supplies --config when the flag is not set.
const configEnv = "ROUTING_CONFIG"

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	useEnv     bool
	logFormat  string
	logLevel   string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   "routectl",
		Short: "Inspect and serve declarative route tables",
		Long: `routectl loads a YAML, TOML or JSON route table and builds the router
it describes. Handlers are identified by their declared names.

Examples:
  routectl print -c routes.yaml
  routectl routes -c routes.yaml
  routectl lookup GET /users/42 --host api.example.com -c routes.yaml
  routectl watch --listen :8080 -c routes.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), g.logFormat, g.logLevel)
			if err != nil {
				return err
			}
			g.logger = logger
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "route table file (default $"+configEnv+")")
	flags.BoolVar(&g.useEnv, "env", true, "apply ROUTING_* environment overrides to router settings")
	flags.StringVar(&g.logFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	cmd.AddCommand(
		printCmd(g),
		routesCmd(g),
		lookupCmd(g),
		convertCmd(g),
		watchCmd(g),
		versionCmd(),
	)
	return cmd
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q: want text or json", format)
	}
}

func (g *globals) path() (string, error) {
	if g.configPath != "" {
		return g.configPath, nil
	}
	if p := os.Getenv(configEnv); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("no route table given: use --config or $%s", configEnv)
}

func (g *globals) loadOptions() []config.LoadOption {
	if g.useEnv {
		return []config.LoadOption{config.WithEnv(config.DefaultEnvPrefix)}
	}
	return nil
}

func (g *globals) load() (*config.File, error) {
	path, err := g.path()
	if err != nil {
		return nil, err
	}
	return config.Load(path, g.loadOptions()...)
}

func (g *globals) build() (*routing.Router, error) {
	f, err := g.load()
	if err != nil {
		return nil, err
	}
	return config.Build(f, resolveName, routing.WithLogger(g.logger))
}

// namedHandler stands in for an application handler. It answers with its
// name and the matched parameters.
type namedHandler string

func (h namedHandler) String() string { return string(h) }

func (h namedHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, string(h))
	params := routing.ParamsFromContext(req.Context())
	for _, k := range sortedKeys(params) {
		fmt.Fprintf(w, "%s=%s\n", k, params[k])
	}
}

func resolveName(name string) (any, error) {
	return namedHandler(name), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parsePairs splits key=value flag values.
func parsePairs(flag string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --%s %q: want key=value", flag, p)
		}
		out[k] = v
	}
	return out, nil
}
