package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	chatbot "github.com/MatiasV55/eligibility-chatbot"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of eligibility",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "eligibility version %s\n", strings.TrimSpace(chatbot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
