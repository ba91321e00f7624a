package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/internal/venue"
)

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List the registered venues",
	Run: func(cmd *cobra.Command, args []string) {
		for _, e := range venue.List() {
			fmt.Printf("%-12s  %s\n", e.Key, e.Platform)
		}
	},
}

func init() {
	rootCmd.AddCommand(venuesCmd)
}
