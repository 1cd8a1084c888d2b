package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mailbridge version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mailbridge version %s\n", version)
		},
	}
}
