// Command duckpond drives the session manager from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/duckpond/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var namingErr *types.NamingError
		var catalogErr *types.CatalogError
		if errors.As(err, &namingErr) || errors.As(err, &catalogErr) {
			os.Exit(exitUserError)
		}
		os.Exit(exitSysError)
	}
}
