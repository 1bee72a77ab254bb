package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "linkscope",
		Short: "Linkscope - relationship graph viewer for investigation data",
		Long: `Linkscope renders the entity relationship graph of an investigation as a
force-directed layout in the terminal. Nodes can be dragged while the
simulation runs, the view pans and zooms, and selecting a node shows its
properties. Data comes from the dashboard graph API or a local dataset file.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(newViewCommand())
	rootCmd.AddCommand(newServeCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
