package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mailbridge application
var rootCmd = &cobra.Command{
	Use:   "mailbridge",
	Short: "Native messaging host bridging mail attachments to a document editor",
	Long: `mailbridge is the native messaging host behind the office-documents
mail extension. It speaks length-prefixed JSON frames on stdin/stdout,
answers the extension's attachment and compose actions, and signs
editor configurations when a shared secret is configured.

The mail client launches it with the serve command; running it by hand
is only useful for debugging.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mailbridge version %s\n" .Version}}`)

	// The mail client invokes the host binary without arguments, so a
	// bare invocation means serve.
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
