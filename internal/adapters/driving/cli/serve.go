package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/api"
	"github.com/custodia-labs/docqa/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the docqa HTTP API.

Endpoints:
  GET  /               health check
  POST /api/ingest     upload PDFs (multipart field "files")
  POST /api/query      {"query": "..."} returns an answer with sources
  POST /api/clear_db   delete every indexed passage
  GET  /api/documents  list indexed documents

The listen address defaults to server.addr (":8000").`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := api.NewServer(&api.Ports{
		Indexing: indexingService,
		Answer:   answerService,
		Catalog:  catalogService,
	}, api.Config{
		MaxUploadBytes: int64(appConfig.Server.MaxUploadMB) << 20,
		Logger:         logger.New(cmd.ErrOrStderr(), logger.IsVerbose()),
	})
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = appConfig.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("docqa API listening on %s\n", addr)
	return server.Run(ctx, addr)
}
