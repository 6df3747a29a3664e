package main

import (
	"github.com/spf13/cobra"

	"github.com/MatiasV55/eligibility-chatbot/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start or resume an eligibility conversation",
	Long: `Starts an interactive conversation on the terminal. With --session, a stored
conversation with that id is resumed where it stopped. Type "salir" to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := cli.ChatOptions{}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Plain, _ = cmd.Flags().GetBool("plain")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")

		return cli.RunChat(cmd.Context(), cfg, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "Session ID to start or resume")
	chatCmd.Flags().Bool("debug", false, "Enable debug logging on stderr")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering")
	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	chatCmd.Flags().BoolP("quiet", "q", false, "Hide the banner and session notices")
	chatCmd.Flags().Bool("llm", false, "Phrase replies with the language model (env USE_LLM_RESPONSES)")
	chatCmd.Flags().String("model", "", "Ollama model name (env OLLAMA_MODEL)")
	chatCmd.Flags().String("metrics-addr", "", "Serve /metrics and /healthz on this address (env METRICS_ADDR)")

	// Make 'chat' the default if no command is provided.
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
	rootCmd.RunE = chatCmd.RunE
}
