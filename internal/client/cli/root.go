package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/rdb/internal/client/api"
	"github.com/dmitrijs2005/rdb/internal/client/config"
)

type options struct {
	server  string
	timeout time.Duration
	in      io.Reader
}

func (o *options) client() *api.Client {
	return api.New(o.server, o.timeout)
}

// NewRootCmd builds the rdbctl command tree. in is used for --secret-stdin.
func NewRootCmd(cfg *config.Config, in io.Reader) *cobra.Command {
	o := &options{in: in}

	root := &cobra.Command{
		Use:           "rdbctl",
		Short:         "Command-line client for the rdb mod registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&o.server, "server", cfg.ServerURL, "registry base URL (env RDB_SERVER)")
	root.PersistentFlags().DurationVar(&o.timeout, "timeout", cfg.Timeout, "request timeout")

	root.AddCommand(
		newSubmitCmd(o),
		newGetCmd(o),
		newListCmd(o),
		newCountCmd(o),
	)
	return root
}
