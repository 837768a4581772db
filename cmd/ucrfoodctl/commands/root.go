// Package commands holds the ucrfoodctl subcommands, none of them touch a database
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ucrfood/internal/platform/config"
	menusmod "ucrfood/internal/services/menus/module"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "ucrfoodctl",
	Short:         "ucrfoodctl inspects dining hall menu pages without touching storage.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional INI file with settings, the environment wins")
}

// ExecuteContext runs the root command and exits 1 on error
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options resolves the menus settings the same way the ingest command does
func options() (menusmod.Options, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return menusmod.Options{}, err
	}
	return menusmod.FromConfig(cfg), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
