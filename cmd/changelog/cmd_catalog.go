package main

import (
	"errors"
	"fmt"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/catalog"
	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var catalogDB string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the SQLite symbol catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <symbols-file>",
	Short: "Load a YAML or JSON symbol list into the catalog database",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogImport,
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Show a symbol from the catalog database",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogLookup,
}

// catalogDatabase returns --db, falling back to catalog.path when that names a database.
func catalogDatabase() (string, error) {
	if catalogDB != "" {
		return catalogDB, nil
	}
	if catalog.IsDatabase(cfg.Catalog.Path) {
		return cfg.Catalog.Path, nil
	}
	return "", errors.New("no catalog database: pass --db or set catalog.path to a .db file")
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	dbPath, err := catalogDatabase()
	if err != nil {
		return err
	}

	symbols, err := catalog.LoadSymbols(args[0])
	if err != nil {
		return err
	}

	store, err := catalog.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Put(symbols...); err != nil {
		return err
	}
	total, err := store.Count()
	if err != nil {
		return err
	}

	logs.Get(logging.CategoryCatalog).Info("Imported symbols",
		zap.String("source", args[0]),
		zap.String("db", dbPath),
		zap.Int("imported", len(symbols)),
		zap.Int("total", total))
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(
		fmt.Sprintf("✓ imported %d symbols into %s (%d total)", len(symbols), dbPath, total)))
	return nil
}

func runCatalogLookup(cmd *cobra.Command, args []string) error {
	dbPath, err := catalogDatabase()
	if err != nil {
		return err
	}

	store, err := catalog.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sym, ok, err := store.Get(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("%s is not in the catalog", args[0])))
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render(sym.Name))
	if sym.HasSource() {
		fmt.Fprintf(out, "  kind:   %s\n  source: %s:%d\n", sym.Kind, sym.File, sym.Line)
	} else {
		fmt.Fprintln(out, mutedStyle.Render("  no source location, references will not be linked"))
	}
	return nil
}
