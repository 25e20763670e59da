// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/luxfi/lseq/broadcast"
	"github.com/luxfi/lseq/config"
	"github.com/luxfi/lseq/log"
	"github.com/luxfi/lseq/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "lseqd",
	Short: "lseqd relays lseq editing operations between replicas",
	Long: `lseqd runs the star-topology broadcast hub described in the lseq
specification: it assigns each joining replica a tag and re-broadcasts
every operation it receives to every other connected replica. It holds no
CRDT state of its own and provides no delivery guarantee.`,
}

func main() {
	rootCmd.AddCommand(serveCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	defaults := config.DefaultParameters()
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for replicas and relay their operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := defaults
			p.HubAddr = addr
			if err := p.Validate(); err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			collector, err := metrics.NewHubCollector(reg)
			if err != nil {
				return err
			}

			hub := broadcast.NewHub(log.NewNoOpLogger(), collector)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt)
			go func() {
				<-sig
				cancel()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "lseqd listening on %s\n", p.HubAddr)
			return hub.Serve(ctx, p.HubAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaults.HubAddr, "listen address")
	return cmd
}
