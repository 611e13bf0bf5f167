package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var resetYes bool

// stdinIsTerminal reports whether the confirmation prompt can be shown.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every indexed passage",
	Long: `Clear the vector index. All documents must be ingested again afterwards.

The command asks for confirmation on a terminal. Pass --yes to skip the
prompt, which is required when stdin is not a terminal.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if err := requireService(catalogService, "catalog"); err != nil {
		return err
	}

	if !resetYes {
		if !stdinIsTerminal() {
			return errors.New("refusing to reset without --yes when stdin is not a terminal")
		}
		cmd.Print("Delete every indexed passage? [y/N]: ")
		answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && answer == "" {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := catalogService.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset index: %w", err)
	}
	cmd.Println(successText("Vector index cleared."))
	return nil
}
