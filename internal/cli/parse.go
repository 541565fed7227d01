package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roboco-io/shlokstudy/internal/ir"
	"github.com/roboco-io/shlokstudy/internal/parser"
)

var (
	parseOutput       string
	parseFormat       string
	parsePrettyPrint  bool
	parseProseMarkers []string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a class text file into shlok blocks",
	Long: `Parses one class text file and prints its shlok blocks.

Output is JSON (the block tree) or text (a readable summary).

Examples:
  shlokstudy parse public/Class_3.txt
  shlokstudy parse public/Class_3.txt -o class3.json
  shlokstudy parse public/Class_3.txt --format text
  shlokstudy parse notes.txt --prose-marker Vachanamrut --prose-marker "Swamini Vato"`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "output file (default: stdout)")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "json", "output format (json, text)")
	parseCmd.Flags().BoolVar(&parsePrettyPrint, "pretty", true, "indent JSON output")
	parseCmd.Flags().StringArrayVar(&parseProseMarkers, "prose-marker", nil, "section name marker whose bodies join with spaces (repeatable, overrides config)")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	data, err := os.ReadFile(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", inputPath)
		}
		return fmt.Errorf("failed to read file: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := parserOptions(cfg)
	if len(parseProseMarkers) > 0 {
		opts.ProseMarkers = parseProseMarkers
	}

	blocks := parser.New(opts).Parse(string(data))

	output, err := formatBlocks(blocks, parseFormat, parsePrettyPrint)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if parseOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	}
	if err := os.WriteFile(parseOutput, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "parsed %d blocks: %s\n", len(blocks), parseOutput)
	return nil
}

func formatBlocks(blocks []*ir.VerseBlock, format string, pretty bool) (string, error) {
	switch format {
	case "json":
		// Verse text carries markup; keep it readable.
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(blocks); err != nil {
			return "", err
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil

	case "text":
		return formatBlocksAsText(blocks), nil

	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatBlocksAsText(blocks []*ir.VerseBlock) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		label := b.Label
		if label == "" {
			label = fmt.Sprint(b.Number)
		}
		fmt.Fprintf(&sb, "Shlok %s\n", label)
		if b.IsEmpty() {
			sb.WriteString("(no content)\n")
			continue
		}
		if b.HasOriginalScript() {
			sb.WriteString(b.OriginalScriptText + "\n")
		}
		if b.PrimaryText != "" {
			sb.WriteString(b.PrimaryText + "\n")
		}

		for _, name := range b.Sections.Names() {
			entries, _ := b.Sections.Get(name)
			fmt.Fprintf(&sb, "\n[%s]\n", name)
			for _, g := range ir.GroupByTopic(entries) {
				if g.Topic != "" {
					fmt.Fprintf(&sb, "  (%s)\n", g.Topic)
				}
				for _, e := range g.Entries {
					fmt.Fprintf(&sb, "  - %s: %s\n", e.Key, e.Body)
				}
			}
		}
	}
	return sb.String()
}
