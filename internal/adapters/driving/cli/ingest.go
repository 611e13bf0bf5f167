package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|dir>...",
	Short: "Index PDF documents",
	Long: `Extract, chunk and embed PDF documents into the vector index.

Directories are expanded to the PDF files they directly contain. Every file
is ingested independently: a failure is reported and the remaining files are
still ingested. The command fails if any file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireService(indexingService, "indexing"); err != nil {
		return err
	}

	paths, err := expandPDFPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found in %s", strings.Join(args, ", "))
	}

	total, failed := 0, 0
	for _, path := range paths {
		n, err := ingestPath(cmd, path)
		if err != nil {
			failed++
			cmd.Printf("%s %s: %v\n", failureText("✗"), filepath.Base(path), err)
			continue
		}
		total += n
		cmd.Printf("%s %s: %s\n", successText("✓"), filepath.Base(path), plural(n, "passage"))
	}

	cmd.Printf("\nIngested %s from %s.\n", plural(total, "passage"), plural(len(paths)-failed, "document"))
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

func ingestPath(cmd *cobra.Command, path string) (int, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return 0, fmt.Errorf("%w: only .pdf files can be ingested", domain.ErrUnsupportedFileType)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return indexingService.Ingest(cmd.Context(), filepath.Base(path), f)
}

// expandPDFPaths replaces each directory argument with the PDFs it contains.
// File arguments are kept as given so unsupported types are reported.
func expandPDFPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}
