package main

import (
	"fmt"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/changes"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var factsCategory string

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Print the change set as Mangle facts",
	Long: `Print one breaking_change(Module, Category, Kind, Name, APIType) fact per
record, sorted, in Mangle source syntax.`,
	Args: cobra.NoArgs,
	RunE: runFacts,
}

func runFacts(cmd *cobra.Command, args []string) error {
	cs, err := changes.Load(cfg.Project.Changes)
	if err != nil {
		return err
	}

	atoms := changes.Facts(cs)
	if factsCategory != "" {
		category := changes.Category(factsCategory)
		if !category.Valid() {
			return fmt.Errorf("%w %q", changes.ErrUnknownCategory, factsCategory)
		}
		atoms, err = changes.SelectFacts(changes.FactStore(cs), changes.CategoryQuery(category))
		if err != nil {
			return err
		}
	}

	logs.Get(logging.CategoryLoad).Debug("Exported facts",
		zap.String("category", factsCategory),
		zap.Int("facts", len(atoms)))
	fmt.Fprint(cmd.OutOrStdout(), changes.FactsSource(atoms))
	return nil
}
