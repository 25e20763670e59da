// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/luxfi/lseq/alloc"
	"github.com/luxfi/lseq/broadcast"
	"github.com/luxfi/lseq/buffer"
	"github.com/luxfi/lseq/config"
	"github.com/luxfi/lseq/log"
	"github.com/luxfi/lseq/wire"
)

var rootCmd = &cobra.Command{
	Use:   "lseqc",
	Short: "lseqc is an interactive replica for an lseq shared buffer",
	Long: `lseqc joins a lseqd hub and exposes a minimal line-oriented editor
over a replicated buffer. It mirrors the shape of
original_source/examples/ed/client.rs: every local edit mints ids through
its own Allocator and broadcasts them; every remote op merges into the
buffer by identifier order alone, regardless of arrival order.`,
}

func main() {
	rootCmd.AddCommand(joinCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func joinCmd() *cobra.Command {
	defaults := config.DefaultParameters()
	var addr string

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a hub and read edit commands from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := defaults
			p.HubAddr = addr
			if err := p.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), p.DialTimeout)
			client, err := broadcast.Dial(ctx, p.HubAddr, log.NewNoOpLogger())
			cancel()
			if err != nil {
				return fmt.Errorf("join %s: %w", p.HubAddr, err)
			}
			defer client.Close()

			a := alloc.New(client.ReplicaTag(), alloc.WithInitialWidth(p.InitialWidth), alloc.WithBoundary(p.Boundary))
			buf := buffer.New(a, log.NewNoOpLogger())
			var mu sync.Mutex

			fmt.Fprintf(cmd.OutOrStdout(), "joined as replica %d\n", client.ReplicaTag())
			go applyRemoteOps(client, buf, &mu)

			return runREPL(cmd, buf, &mu, client)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaults.HubAddr, "hub address to dial")
	return cmd
}

// applyRemoteOps merges every Op the hub relays into buf until the
// connection closes.
func applyRemoteOps(client *broadcast.Client, buf *buffer.Buffer, mu *sync.Mutex) {
	for op := range client.Operations() {
		mu.Lock()
		switch o := op.(type) {
		case wire.AddOp:
			buf.ApplyAdd(o.Items)
		case wire.RemoveOp:
			buf.ApplyRemove(o.IDs)
		case wire.NoopOp:
			// nothing to apply
		}
		mu.Unlock()
	}
}

// runREPL reads line commands from stdin:
//
//	a <text>        append text to the end of the buffer
//	i <pos> <text>  insert text before position pos
//	d <pos> <len>   delete len runes starting at pos
//	p               print the current buffer contents
//	q               quit
func runREPL(cmd *cobra.Command, buf *buffer.Buffer, mu *sync.Mutex, client *broadcast.Client) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := scanner.Text()
		verb, rest, _ := strings.Cut(line, " ")

		switch verb {
		case "a":
			mu.Lock()
			items := buf.Append(rest)
			mu.Unlock()
			if len(items) > 0 {
				if err := client.Send(wire.AddOp{Items: items}); err != nil {
					return err
				}
			}

		case "i":
			pos, text, err := parsePosAndText(rest)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			mu.Lock()
			items := buf.InsertAt(pos, text)
			mu.Unlock()
			if len(items) > 0 {
				if err := client.Send(wire.AddOp{Items: items}); err != nil {
					return err
				}
			}

		case "d":
			pos, length, err := parseTwoInts(rest)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			mu.Lock()
			ids := buf.Delete(pos, length)
			mu.Unlock()
			if len(ids) > 0 {
				if err := client.Send(wire.RemoveOp{IDs: ids}); err != nil {
					return err
				}
			}

		case "p":
			mu.Lock()
			fmt.Fprintln(out, buf.String())
			mu.Unlock()

		case "q":
			return nil

		default:
			fmt.Fprintf(out, "unrecognized command %q\n", line)
		}
	}
	return scanner.Err()
}

func parsePosAndText(rest string) (int, string, error) {
	posStr, text, ok := strings.Cut(rest, " ")
	if !ok {
		return 0, "", fmt.Errorf("usage: i <pos> <text>")
	}
	pos, err := strconv.Atoi(posStr)
	if err != nil {
		return 0, "", fmt.Errorf("bad position %q: %w", posStr, err)
	}
	return pos, text, nil
}

func parseTwoInts(rest string) (int, int, error) {
	a, b, ok := strings.Cut(rest, " ")
	if !ok {
		return 0, 0, fmt.Errorf("usage: d <pos> <len>")
	}
	pos, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("bad position %q: %w", a, err)
	}
	length, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("bad length %q: %w", b, err)
	}
	return pos, length, nil
}
