package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/coldcase/cmd/cli/casecmd"
	"github.com/myrjola/coldcase/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log database activity to stderr")
	rootCmd.AddGroup(casecmd.Group)
	rootCmd.AddCommand(casecmd.Validate, casecmd.Import, casecmd.List)
}

var rootCmd = &cobra.Command{
	Use:          "coldcase-cli",
	Long:         `Command line utilities for authoring and managing coldcase case files`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
