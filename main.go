package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"satreceiver/cmd/receiver"
)

var rootCmd = &cobra.Command{Use: "satreceiver"}

func init() {
	rootCmd.AddCommand(receiver.LiveCmd)
	rootCmd.AddCommand(receiver.ReplayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
