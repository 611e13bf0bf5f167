package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the AI providers are reachable",
	Long: `Ping the configured embedding and LLM providers with the resolved
settings. Use it after changing providers or API keys.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService, "settings"); err != nil {
		return err
	}

	embedding := fmt.Sprintf("embedding (%s %s)", appConfig.Embedding.Provider, appConfig.Embedding.Model)
	llm := fmt.Sprintf("llm (%s %s)", appConfig.LLM.Provider, appConfig.LLM.Model)

	embeddingErr := reportCheck(cmd, embedding, settingsService.ValidateEmbeddingConfig(appConfig))
	llmErr := reportCheck(cmd, llm, settingsService.ValidateLLMConfig(appConfig))

	return errors.Join(embeddingErr, llmErr)
}

func reportCheck(cmd *cobra.Command, name string, err error) error {
	if err != nil {
		cmd.Printf("%s %s: %v\n", failureText("✗"), name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	cmd.Printf("%s %s: ok\n", successText("✓"), name)
	return nil
}
