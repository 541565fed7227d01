package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var indexContentDir string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Print the class index with the shlok numbers of every class",
	Args:  cobra.NoArgs,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexContentDir, "content", "", "content directory (default content.dir)")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if indexContentDir != "" {
		cfg.Content.Dir = indexContentDir
	}

	meta, err := openCatalog(cfg).Metadata(contextOrBackground(cmd))
	if err != nil {
		return fmt.Errorf("failed to index classes: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
