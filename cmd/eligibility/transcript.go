package main

import (
	"github.com/spf13/cobra"

	"github.com/MatiasV55/eligibility-chatbot/internal/cli"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Inspect stored conversations",
	Long:  `List and print the encrypted transcripts kept by the configured store.`,
}

var transcriptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored session IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return cli.ListTranscripts(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

var transcriptShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the turns of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts := cli.TranscriptOptions{}
		opts.Redact, _ = cmd.Flags().GetBool("redact")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		return cli.ShowTranscript(cmd.Context(), cfg, cmd.OutOrStdout(), args[0], opts)
	},
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.AddCommand(transcriptListCmd)
	transcriptCmd.AddCommand(transcriptShowCmd)

	transcriptShowCmd.Flags().Bool("redact", false, "Mask numbers in the output")
	transcriptShowCmd.Flags().Bool("json", false, "Print turns as JSON")
}
