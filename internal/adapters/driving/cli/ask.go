package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed documents",
	Long: `Retrieve the passages most relevant to the question and generate an
answer grounded in them. The answer is followed by its sources.

All arguments are joined into one question, so quoting is optional.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// answerJSON is the JSON output of the ask command. Unknown pages are null.
type answerJSON struct {
	Answer  string       `json:"answer"`
	Sources []sourceJSON `json:"sources"`
}

type sourceJSON struct {
	Document string `json:"document"`
	Page     *int   `json:"page"`
	Snippet  string `json:"snippet"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireService(answerService, "answer"); err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("%w: question must not be empty", domain.ErrInvalidInput)
	}

	result, err := answerService.Answer(cmd.Context(), question)
	if err != nil {
		return err
	}

	if askJSON {
		return outputAnswerJSON(cmd, result)
	}
	outputAnswer(cmd, result)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, result *domain.AnswerResult) error {
	out := answerJSON{Answer: result.Answer, Sources: make([]sourceJSON, 0, len(result.Sources))}
	for _, src := range result.Sources {
		out.Sources = append(out.Sources, sourceJSON{
			Document: src.Document,
			Page:     pagePtr(src.Page),
			Snippet:  src.Snippet,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, result *domain.AnswerResult) {
	cmd.Println(result.Answer)
	if len(result.Sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Println(headingText("Sources:"))
	for i, src := range result.Sources {
		cmd.Printf("  %s\n", citeText(fmt.Sprintf("[%d] %s", i+1, formatCitation(src))))
		if snippet := preview(src.Snippet, snippetWidth); snippet != "" {
			cmd.Printf("      %s\n", mutedText(snippet))
		}
	}
}
