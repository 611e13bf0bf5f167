// Package cli provides the docqa command-line interface.
//
// Commands call the core through driving ports held in package variables.
// The composition root registers an Initialiser that builds them from the
// resolved configuration before any command that needs them runs.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// annotationSkipInit marks commands that run without services.
const annotationSkipInit = "docqa.skip-init"

var version = "dev"

// Services holds the driving ports the commands call into.
type Services struct {
	Indexing driving.IndexingService
	Answer   driving.AnswerService
	Catalog  driving.CatalogService
	Settings driving.SettingsService

	// Config is the resolved configuration the services were built from.
	Config domain.Config

	// Close releases provider clients and the vector index. Optional.
	Close func() error
}

// Initialiser builds the services. configPath is the --config flag value.
type Initialiser func(ctx context.Context, configPath string) (*Services, error)

var (
	initialiser Initialiser

	indexingService driving.IndexingService
	answerService   driving.AnswerService
	catalogService  driving.CatalogService
	settingsService driving.SettingsService
	appConfig       = domain.DefaultConfig()
	closeServices   func() error

	verbose    bool
	noColor    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your PDF documents",
	Long: `docqa indexes PDF documents into a vector index and answers questions
about them with a language model, citing the document and page each answer
came from.

Providers, the index backend and chunking are configured in docqa.toml,
~/.docqa/config.toml, a .env file or DOCQA_* environment variables.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initialise,
	PersistentPostRunE: shutdown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetInitialiser registers the function that builds the services.
func SetInitialiser(fn Initialiser) {
	initialiser = fn
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func initialise(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	if skipsInit(cmd) || answerService != nil {
		return nil
	}
	if initialiser == nil {
		return errors.New("docqa is not configured")
	}

	svc, err := initialiser(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	applyServices(svc)
	return nil
}

func shutdown(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	closeFn := closeServices
	closeServices = nil
	return closeFn()
}

func applyServices(svc *Services) {
	indexingService = svc.Indexing
	answerService = svc.Answer
	catalogService = svc.Catalog
	settingsService = svc.Settings
	appConfig = svc.Config
	closeServices = svc.Close
}

// skipsInit reports whether cmd or one of its parents runs without services.
func skipsInit(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationSkipInit] == "true" {
			return true
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// requireService returns an error naming the missing service when svc is nil.
func requireService(svc any, name string) error {
	if svc == nil {
		return errors.New(name + " service not configured")
	}
	return nil
}
