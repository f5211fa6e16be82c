package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/duckpond/pkg/duckpond"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the duckpond version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("duckpond", duckpond.Version)
	},
}
