package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/duckpond/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Execute one statement and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager()
		if err != nil {
			return err
		}
		defer m.Close()

		res, err := m.ExecuteQuery(args[0])
		if err != nil {
			return err
		}
		return printResult(res)
	},
}

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List every known database alias",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager()
		if err != nil {
			return err
		}
		defer m.Close()

		names := m.DatabaseNames()
		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(names)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

// printResult renders a query result either as JSON or as an aligned table
// of rows, falling back to the affected-row count for non-row statements.
func printResult(res *types.Result) error {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Data == nil {
		fmt.Printf("OK, %d row(s) affected\n", res.AffectedRows)
		return nil
	}

	if len(res.Data) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	cols := make([]string, 0, len(res.Data[0]))
	for c := range res.Data[0] {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
	for _, row := range res.Data {
		for i, c := range cols {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprintf(w, "%v", row[c])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
