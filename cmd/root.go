package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the bloglist binary.
var rootCmd = &cobra.Command{
	Use:   "bloglist",
	Short: "Bloglist API server",
	Long: `Bloglist is the backend for the blog-sharing application. It serves
the REST API for accounts, sessions, and the like-ranked blog list.`,
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
