package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirebattle-server/internal/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr    string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "wirebattle-client",
		Short: "Terminal client for the wirebattle server",
		Long:  "Connects to a wirebattle server over TCP (host:port) or the WebSocket gateway (ws://host/ws).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, addr, os.Stdin, os.Stdout)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "localhost:57521", "server address, host:port or ws:// URL")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	return cmd
}

func run(ctx context.Context, addr string, in io.Reader, out io.Writer) error {
	conn, err := client.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	color.New(color.FgGreen, color.Bold).Fprintf(out, "Connected to %s. Ctrl+C to exit.\n", addr)

	readErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(client.NewDisplay(out), conn)
		readErr <- err
	}()

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if _, err := fmt.Fprintf(conn, "%s\r\n", scanner.Text()); err != nil {
				return
			}
		}
		// stdin closed: hang up so the read side finishes.
		_ = conn.Close()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-readErr:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("connection lost: %w", err)
		}
		color.New(color.FgYellow).Fprintln(out, "Disconnected.")
		return nil
	}
}
