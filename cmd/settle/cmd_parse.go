package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/settlement-data/internal/convention"
	"github.com/rickgao/settlement-data/internal/decode"
	"github.com/rickgao/settlement-data/internal/logging"
	"github.com/rickgao/settlement-data/internal/model"
	"github.com/rickgao/settlement-data/internal/report"
)

var (
	parseProducts    []string
	parseJSON        bool
	parseConventions string
	parseLogLevel    string
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Decode one settlement report and print it",
	Long: `Decodes a single report and prints one line per section: product,
section kind, quote convention, row count and the first row's settlement
price in points and in exchange notation. --json prints the full report.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringSliceVar(&parseProducts, "product", nil, "product codes to keep (repeatable)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the decoded report as JSON")
	parseCmd.Flags().StringVar(&parseConventions, "conventions", "", "convention override table (YAML)")
	parseCmd.Flags().StringVar(&parseLogLevel, "log-level", "warn", "log level written to stderr")
}

func runParse(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(parseLogLevel)
	if err != nil {
		return err
	}
	// Stdout carries the report; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	table, err := loadTable(parseConventions)
	if err != nil {
		return err
	}

	rep, err := report.ParseFile(args[0], report.Options{
		Products: report.ProductFilter(parseProducts),
		Table:    table,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if parseJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return printSummary(out, rep, table)
}

func printSummary(w io.Writer, rep *model.SettlementReport, table *convention.Table) error {
	fmt.Fprintf(w, "Date: %s  Sections: %d  Rows: %d\n\n",
		rep.Date.Format(time.DateOnly), len(rep.Sections), rep.RowCount())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tSECTION\tCONVENTION\tROWS\tFIRST\tSETTLE\tQUOTED")
	for _, s := range rep.Sections {
		first, settle, quoted := "-", "-", "-"
		if len(s.Rows) > 0 {
			row := s.Rows[0]
			first = contract(s, row)
			settle = formatPoints(row.Settle)
			quoted = quote(s, row.Settle)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			s.ProductCode, s.Kind, s.Convention, len(s.Rows), first, settle, quoted)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var unknown []string
	for _, code := range rep.Products() {
		if !table.Knows(code) {
			unknown = append(unknown, code)
		}
	}
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nNot in convention table (decoded as straight): %s\n", strings.Join(unknown, " "))
	}
	return nil
}

// contract names a row by month for futures and strike for options.
func contract(s model.ProductSection, row model.SettlementRow) string {
	if s.Kind.IsOption() {
		return formatPoints(row.Strike)
	}
	return string(row.Month)
}

// quote renders a price the way the exchange prints it for tick conventions.
func quote(s model.ProductSection, v float64) string {
	if !s.Convention.IsTick() {
		return formatPoints(v)
	}
	return decode.EncodeTicks(v, decode.TickDenominator(s.Kind))
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
