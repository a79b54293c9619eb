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
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"rivaas.dev/routing"
	"rivaas.dev/routing/config"
)

func watchCmd(g *globals) *cobra.Command {
	var (
		listen   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the router whenever the route table changes",
		Long: `Rebuild the router whenever the route table changes.

Each successful rebuild prints its generation. With --listen the current
router also serves HTTP; every handler answers with its name and the
matched parameters. Router settings are read once at start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), g, cmd.OutOrStdout(), listen, debounce)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "serve HTTP on this address")
	cmd.Flags().DurationVar(&debounce, "debounce", config.DefaultDebounceDelay, "delay between a change and the rebuild")
	return cmd
}

func runWatch(ctx context.Context, g *globals, out io.Writer, listen string, debounce time.Duration) error {
	path, err := g.path()
	if err != nil {
		return err
	}
	f, err := config.Load(path, g.loadOptions()...)
	if err != nil {
		return err
	}

	opts := append(f.Options(), routing.WithLogger(g.logger))
	rl, err := routing.NewReloader(config.BuildFunc(f, resolveName), opts...)
	if err != nil {
		return err
	}
	report := func() {
		fmt.Fprintf(out, "generation %d: %d routes\n", rl.Generation(), rl.Router().Len())
	}

	w, err := config.NewWatcher(path,
		func(next *config.File) {
			if err := rl.Rebuild(config.BuildFunc(next, resolveName)); err != nil {
				g.logger.Error("rebuild failed, keeping current router", "error", err)
				return
			}
			report()
		},
		config.WithLogger(g.logger),
		config.WithDebounceDelay(debounce),
		config.WithLoadOptions(g.loadOptions()...),
		config.WithErrorCallback(func(err error) {
			g.logger.Error("route table rejected", "error", err)
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()
	report()

	if listen == "" {
		<-ctx.Done()
		return nil
	}
	return serve(ctx, g, rl, listen)
}

func serve(ctx context.Context, g *globals, h http.Handler, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	g.logger.Info("serving", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
