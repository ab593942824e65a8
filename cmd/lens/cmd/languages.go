package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/MeKo-Tech/pogo-lens/internal/config"
	"github.com/MeKo-Tech/pogo-lens/internal/models"
	"github.com/spf13/cobra"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

func newLanguagesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the built-in language pairs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			installed, _ := cmd.Flags().GetBool("installed")
			pairs := config.LanguagePairs()
			active := a.cfg.Language.Pair
			dataDir := models.GetDataDir(a.cfg.Recognizer.DataPath)

			switch format {
			case outputFormatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(pairs)
			case outputFormatText:
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				header := "PAIR\tOCR\tSOURCE\tTARGET\tDESCRIPTION"
				if installed {
					header += "\tTRAINEDDATA"
				}
				_, _ = fmt.Fprintln(tw, header)
				for _, p := range pairs {
					name := p.Name
					if name == active {
						name += " *"
					}
					line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", name, p.Recognizer, p.Source, p.Target, p.Describe())
					if installed {
						line += "\t" + traineddataStatus(dataDir, p.Recognizer)
					}
					_, _ = fmt.Fprintln(tw, line)
				}
				if installed {
					_, _ = fmt.Fprintf(tw, "\ntessdata: %s\n", orUnknown(dataDir))
				}
				return tw.Flush()
			default:
				return fmt.Errorf("invalid output format: %s (must be one of: %s, %s)", format, outputFormatText, outputFormatJSON)
			}
		},
	}
	cmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
	cmd.Flags().Bool("installed", false, "check which Tesseract models are installed")
	return cmd
}

func traineddataStatus(dataDir, lang string) string {
	if dataDir == "" {
		return "unknown"
	}
	if missing := models.Missing(dataDir, lang); len(missing) > 0 {
		return "missing " + strings.Join(missing, ",")
	}
	return "ok"
}

func orUnknown(s string) string {
	if s == "" {
		return "(not found)"
	}
	return s
}
