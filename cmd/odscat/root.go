package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hanpama/ods"
	"github.com/hanpama/ods/internal/document"
	"github.com/hanpama/ods/internal/render"
)

var (
	outputFormat string
	rowLimit     int
	batchSize    int
	configPath   string
	tempDir      string
	colorHeader  bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "odscat [flags] <file.ods>",
	Short: "Print the first sheet of an OpenDocument spreadsheet",
	Long: `odscat streams the rows of the first table in an .ods file to stdout.

Output formats:
  text  ASCII grid, rendered in batches of --batch rows
  csv   comma-separated values
  json  one JSON array per row

Examples:
  odscat report.ods
  odscat --format csv --limit 100 report.ods
  odscat --config odscat.yaml --color report.ods`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCat,
}

func init() {
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, csv or json)")
	rootCmd.Flags().IntVarP(&rowLimit, "limit", "n", 0, "Stop after this many rows (0 = all)")
	rootCmd.Flags().IntVar(&batchSize, "batch", 50, "Rows per grid in text output")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().StringVar(&tempDir, "temp-dir", "", "Directory for the extracted content document")
	rootCmd.Flags().BoolVar(&colorHeader, "color", false, "Highlight the first row in text output")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages to stderr")
}

func runCat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reader, err := ods.Open(args[0], cfg)
	if err != nil {
		return err
	}
	defer reader.Close()

	var rows document.RowScanner = reader
	if rowLimit > 0 {
		rows = &limitScanner{scanner: reader, remaining: rowLimit}
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "text":
		err = render.RenderText(rows, out, batchSize, headerStyle())
	case "csv":
		err = writeCSV(rows, out)
	case "json":
		err = writeJSON(rows, out)
	default:
		return fmt.Errorf("unknown format %q", outputFormat)
	}
	if err != nil {
		return err
	}

	if err := reader.Err(); err != nil {
		return fmt.Errorf("content document is malformed: %w", err)
	}
	return nil
}

func loadConfig() (ods.Config, error) {
	var cfg ods.Config
	if configPath != "" {
		loaded, err := ods.LoadConfigFile(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if tempDir != "" {
		cfg.TempDir = tempDir
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return cfg, nil
}

func headerStyle() func(string) string {
	if !colorHeader {
		return nil
	}
	bold := color.New(color.Bold, color.FgCyan)
	return func(s string) string {
		return bold.Sprint(s)
	}
}

func writeCSV(rows document.RowScanner, w io.Writer) error {
	cw := csv.NewWriter(w)
	for {
		row, ok := rows.Next()
		if !ok {
			break
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(rows document.RowScanner, w io.Writer) error {
	enc := json.NewEncoder(w)
	for {
		row, ok := rows.Next()
		if !ok {
			return nil
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	}
}

type limitScanner struct {
	scanner   document.RowScanner
	remaining int
}

func (s *limitScanner) Next() (document.Row, bool) {
	if s.remaining <= 0 {
		return nil, false
	}
	s.remaining--
	return s.scanner.Next()
}
