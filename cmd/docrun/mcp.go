package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/docrun/docrun/internal/config"
	docmcp "github.com/docrun/docrun/internal/mcp"
	"github.com/docrun/docrun/internal/report"
)

var mcpFlags struct {
	instructions bool
	httpAddr     string
}

var mcpCmd = &cobra.Command{
	Use:           "mcp",
	Short:         "Start the MCP server",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mcpFlags.instructions {
			fmt.Print(docmcp.Instructions)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return serve(ctx, mcpFlags.httpAddr)
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpFlags.instructions, "instructions", false, "print model instructions and exit")
	mcpCmd.Flags().StringVar(&mcpFlags.httpAddr, "http", "", "start HTTP server on address (e.g. :9090)")
}

func serve(ctx context.Context, httpAddr string) error {
	workspace, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	disk := report.NewDiskStore()
	store := report.NewLRUStore(5, disk)

	server := docmcp.NewServer(loaded.Config, store, workspace)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
