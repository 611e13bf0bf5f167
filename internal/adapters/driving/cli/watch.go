package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/watch"
	"github.com/custodia-labs/docqa/internal/logger"
)

var (
	watchExisting bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Ingest PDFs as they are added to a directory",
	Long: `Watch a directory and ingest every PDF written to it once its writes
have settled. A file that changes is ingested again. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "ingest PDFs already in the directory first")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a file is ingested")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireService(indexingService, "indexing"); err != nil {
		return err
	}

	w, err := watch.New(args[0], indexingService, watch.Config{
		Debounce:       watchDebounce,
		IngestExisting: watchExisting,
		Logger:         logger.New(cmd.ErrOrStderr(), logger.IsVerbose()),
		OnResult: func(r watch.Result) {
			if r.Err != nil {
				cmd.Printf("%s %s: %v\n", failureText("✗"), filepath.Base(r.Path), r.Err)
				return
			}
			cmd.Printf("%s %s: %s\n", successText("✓"), filepath.Base(r.Path), plural(r.Passages, "passage"))
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for PDFs (Ctrl+C to stop)\n", args[0])
	return w.Run(ctx)
}
