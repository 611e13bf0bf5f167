package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs", "ls"},
	Short:   "List indexed documents",
	Args:    cobra.NoArgs,
	RunE:    runDocuments,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "output the listing as JSON")
	rootCmd.AddCommand(documentsCmd)
}

type documentJSON struct {
	Name     string `json:"name"`
	Passages int    `json:"passages"`
	Pages    int    `json:"pages"`
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if err := requireService(catalogService, "catalog"); err != nil {
		return err
	}

	docs, err := catalogService.Documents(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		out := make([]documentJSON, 0, len(docs))
		for _, d := range docs {
			out = append(out, documentJSON{Name: d.Name, Passages: d.Passages, Pages: d.Pages})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, headingText("NAME")+"\t"+headingText("PASSAGES")+"\t"+headingText("PAGES"))
	passages := 0
	for _, d := range docs {
		pages := "-"
		if d.Pages > 0 {
			pages = fmt.Sprintf("%d", d.Pages)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Name, d.Passages, pages)
		passages += d.Passages
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	cmd.Printf("\nTotal: %s, %s\n", plural(len(docs), "document"), plural(passages, "passage"))
	return nil
}
