package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/converseworks/convkit/internal/connector"
	"github.com/converseworks/convkit/internal/participant"
	"github.com/converseworks/convkit/internal/platform"
	"github.com/converseworks/convkit/internal/storage"
)

func newTerminalCmd() *cobra.Command {
	var userID string
	var save bool

	cmd := &cobra.Command{
		Use:   "terminal",
		Short: "Run an interactive dialogue on the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			agent := participant.NewParrotAgent(cfg.AgentID)
			user := participant.NewHumanUser(userID)
			term := platform.NewTerminal()

			dc := connector.New(connector.Config{
				Agent:               agent,
				User:                user,
				Platform:            term,
				Store:               storage.NewJSONStore(cfg.ExportDir),
				SaveDialogueHistory: save,
			})
			if err := dc.Start(); err != nil {
				return fmt.Errorf("start dialogue: %w", err)
			}
			return term.Listen(user, dc)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "user", "user id for the session")
	cmd.Flags().BoolVar(&save, "save", true, "export the dialogue on close")
	return cmd
}
