package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanproy/minorminer/internal/api"
	"github.com/aidanproy/minorminer/pkg/jobs"
)

// serveCommand creates the serve command for the HTTP embedding service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		backend   string
		redisAddr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP embedding service",
		Long: `Run the HTTP embedding service.

The service exposes a synchronous endpoint (POST /api/v1/embeddings) and
asynchronous job endpoints (POST /api/v1/jobs, GET /api/v1/jobs/{id},
GET /api/v1/jobs/{id}/result). Jobs are kept in a file store by default;
use --jobs redis for multi-instance deployments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newJobStore(cmd, backend, redisAddr)
			if err != nil {
				return err
			}
			defer store.Close()

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			handlers := &api.Handlers{
				Runner: runner,
				Jobs:   store,
				Logger: c.Logger,
			}
			srv := api.NewServer(api.DefaultConfig(addr), handlers)
			return api.ListenAndServe(cmd.Context(), srv, c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&backend, "jobs", "file", "job store backend: file or redis")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "redis address for --jobs redis")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func newJobStore(cmd *cobra.Command, backend, redisAddr string) (jobs.Store, error) {
	switch backend {
	case "file":
		return jobs.NewFileStore("")
	case "redis":
		return jobs.NewRedisStore(cmd.Context(), jobs.RedisConfig{Addr: redisAddr})
	default:
		return nil, fmt.Errorf("unknown job store backend %q (want file or redis)", backend)
	}
}
