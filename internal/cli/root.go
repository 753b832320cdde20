// Package cli wires the toolkit's components behind a command line
// interface: an interactive terminal session, a websocket server, template
// extraction, classifier training and offline evaluation.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	logx "github.com/converseworks/convkit/pkg/logger"
)

// AppConfig defines the configurable parameters every command shares,
// sourced from environment variables (loaded from .env for local runs).
// Backend-specific settings (Redis, Gemini, Rasa) are processed by the
// commands that use them, so commands without such a backend start without
// any of their variables set.
type AppConfig struct {
	// Dialogue export
	ExportDir string `envconfig:"EXPORT_DIR" default:"dialogue_export"`
	AgentID   string `envconfig:"AGENT_ID" default:"parrot"`

	// Server
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "convkit",
		Short: "Conversational agent toolkit",
		Long:  `convkit runs dialogue sessions, trains NLU models, extracts NLG templates and evaluates recorded dialogues.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logx.InitFromOS()
		},
	}
	root.AddCommand(
		newTerminalCmd(),
		newServerCmd(),
		newExtractCmd(),
		newTrainCmd(),
		newEvaluateCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig loads .env when present and processes the environment.
func loadConfig() (*AppConfig, error) {
	if err := godotenv.Load(".env"); err != nil {
		logx.Debug().Err(err).Msg("no .env file loaded")
	}
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	return &cfg, nil
}
