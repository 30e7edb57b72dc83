package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var conventionsPath string

var conventionsCmd = &cobra.Command{
	Use:   "conventions",
	Short: "List product codes and their quote conventions",
	Long: `Prints every product code in the convention table, the embedded
default merged with --conventions when given. Codes not listed decode as
straight decimals.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(conventionsPath)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PRODUCT\tCONVENTION")
		for _, code := range table.Codes() {
			fmt.Fprintf(tw, "%s\t%s\n", code, table.Resolve(code))
		}
		return tw.Flush()
	},
}

func init() {
	conventionsCmd.Flags().StringVar(&conventionsPath, "conventions", "", "convention override table (YAML)")
}
