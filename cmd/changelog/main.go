package main

import (
	"fmt"
	"os"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/config"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	changesPath string
	catalogPath string
	fromVersion string
	toVersion   string

	// Loaded once per invocation
	cfg  *config.Config
	logs *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Render the removed and changed API section of a release changelog",
	Long: `changelog turns a structured list of breaking API changes into the
"Full list of removed and changed API" section of a Silverstripe CMS changelog.

Changes are read from the YAML or JSON file produced by the API diff tool.
References are linked only when the class exists in the target version's
symbol catalog.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlagOverrides(loaded)
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded

		logs, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logs.Get(logging.CategoryBoot).Debug("Configuration loaded",
			zap.String("config", configPath),
			zap.String("changes", cfg.Project.Changes),
			zap.String("catalog", cfg.Catalog.Path),
			zap.String("output", cfg.Render.Output))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logs != nil {
			_ = logs.Sync()
		}
	},
}

// applyFlagOverrides lets global flags win over the config file and environment.
func applyFlagOverrides(c *config.Config) {
	if changesPath != "" {
		c.Project.Changes = changesPath
	}
	if catalogPath != "" {
		c.Catalog.Path = catalogPath
	}
	if fromVersion != "" {
		c.Project.FromVersion = fromVersion
	}
	if toVersion != "" {
		c.Project.ToVersion = toVersion
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&changesPath, "changes", "", "Change set file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Symbol catalog (symbol list or .db)")
	rootCmd.PersistentFlags().StringVar(&fromVersion, "from", "", "Label of the version being upgraded from")
	rootCmd.PersistentFlags().StringVar(&toVersion, "to", "", "Label of the version being upgraded to")

	// Command flags
	renderCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Output file (default: render.output)")
	checkCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Changelog to check (default: render.output)")
	checkCmd.Flags().BoolVarP(&quietCheck, "quiet", "q", false, "Only report whether the changelog is current")
	previewCmd.Flags().IntVar(&previewWidth, "width", 100, "Word wrap width")
	previewCmd.Flags().BoolVar(&previewRaw, "raw", false, "Print markdown without terminal styling")
	factsCmd.Flags().StringVar(&factsCategory, "category", "", "Only facts in this change category")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
	catalogImportCmd.Flags().StringVar(&catalogDB, "db", "", "Catalog database (default: catalog.path)")
	catalogLookupCmd.Flags().StringVar(&catalogDB, "db", "", "Catalog database (default: catalog.path)")

	// Subcommands
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogLookupCmd)
	historyCmd.AddCommand(historyShowCmd)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
