package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/xtding233/enhance-cost/internal/server"
)

// remoteCmd forwards key=value pairs to a running server and prints the JSON
// reply, e.g. `enhancecost remote bundle item=1004422 target=17 main_target=Legendary`.
func (c *cli) remoteCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:       "remote {reinforcement|quality|bundle} [key=value...]",
		Short:     "Call a running estimator server over gRPC",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"reinforcement", "quality", "bundle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return c.remote(ctx, server.NewClient(conn), args[0], req)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9090", "server address")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "call timeout")
	return cmd
}

func (c *cli) remote(ctx context.Context, client *server.Client, method string, req map[string]any) error {
	var (
		out map[string]any
		err error
	)
	switch method {
	case "reinforcement":
		out, err = client.Reinforcement(ctx, req)
	case "quality":
		out, err = client.Quality(ctx, req)
	case "bundle":
		out, err = client.Bundle(ctx, req)
	default:
		return fmt.Errorf("unknown method %q", method)
	}
	if err != nil {
		return err
	}
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(b))
	return err
}

// parsePairs reads key=value arguments. Values stay strings; the server
// parses numbers itself.
func parsePairs(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", a)
		}
		out[k] = v
	}
	return out, nil
}
