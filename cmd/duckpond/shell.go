package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive SQL shell against the session manager",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openManager()
		if err != nil {
			return err
		}
		defer m.Close()

		fmt.Println("duckpond shell. Type \\q to quit.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Printf("%s> ", m.CurrentAlias())
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == `\q` || strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
				break
			}

			res, qerr := m.ExecuteQuery(line)
			if qerr != nil {
				fmt.Fprintln(os.Stderr, "Error:", qerr)
				continue
			}
			if perr := printResult(res); perr != nil {
				return perr
			}
		}
		return scanner.Err()
	},
}
