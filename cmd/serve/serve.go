// Package serve runs the HTTP API.
package serve

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/internal/api"
	"fjacquet/cashflow/internal/container"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the JSON API under /api. When the scheduler is enabled the monthly
recurring materialization runs in the background. SIGINT or SIGTERM drain
in-flight requests before exiting.`,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := root.NewContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	listen := c.GetConfig().Server.Addr
	if addr != "" {
		listen = addr
	}
	return Run(ctx, c, listen)
}

// Run serves until ctx is cancelled, with the scheduler running alongside
// when one is configured.
func Run(ctx context.Context, c *container.Container, listen string) error {
	if sched := c.GetScheduler(); sched != nil {
		sched.Start()
		defer sched.Stop(context.Background())
	}
	return api.NewServer(listen, c.Router(), c.GetLogger()).Run(ctx)
}
