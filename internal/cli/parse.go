package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/importer"
	"github.com/spf13/cobra"
)

// NewParseCmd normalizes a question file offline and prints the result as JSON.
func NewParseCmd(configPath *string) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Normalize a CSV or Excel question file and print the questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			return runParse(cmd, cfg, args[0], pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func runParse(cmd *cobra.Command, cfg config.Config, path string, pretty bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	normalizer := importer.NewNormalizer(cfg.ImporterOptions())
	questions, err := normalizer.Parse(f, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(questions)
}
