package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/converseworks/convkit/internal/connector"
	"github.com/converseworks/convkit/internal/participant"
	"github.com/converseworks/convkit/internal/platform"
	"github.com/converseworks/convkit/internal/storage"
	logx "github.com/converseworks/convkit/pkg/logger"
	pkgredis "github.com/converseworks/convkit/pkg/redis"
)

func newServerCmd() *cobra.Command {
	var save bool
	var useRedis bool
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve dialogues over a websocket endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var store connector.Store = storage.NewJSONStore(cfg.ExportDir)
			if useRedis {
				var rcfg pkgredis.Config
				if err := envconfig.Process("redis", &rcfg); err != nil {
					return fmt.Errorf("process redis config: %w", err)
				}
				rdb, err := rcfg.New()
				if err != nil {
					return fmt.Errorf("initialise redis client: %w", err)
				}
				defer rdb.Close()
				store = storage.NewRedisStore(rdb, ttl)
			}

			sock := platform.NewSocket(platform.SocketConfig{
				NewAgent: func() participant.Agent {
					return participant.NewParrotAgent(cfg.AgentID)
				},
				Store:               store,
				SaveDialogueHistory: save,
			})

			r := chi.NewRouter()
			r.Use(middleware.Recoverer)
			r.Mount("/", sock.Routes())

			logx.Info().Str("addr", cfg.ListenAddr).Msg("dialogue server listening")
			return http.ListenAndServe(cfg.ListenAddr, r)
		},
	}
	cmd.Flags().BoolVar(&save, "save", true, "export dialogues on close")
	cmd.Flags().BoolVar(&useRedis, "redis", false, "export to redis instead of JSON files")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "redis dialogue TTL")
	return cmd
}
