package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"archplan/internal/client"
)

var (
	serverURL string
	timeout   time.Duration
	api       *client.HTTPClient
)

func Execute() error {
	return NewRoot().Execute()
}

// NewRoot собирает дерево команд; отдельно от Execute для тестов.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "planctl",
		Short:         "Floor plan planner CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			api = client.New(serverURL)
			api.HTTP.Timeout = timeout
			return nil
		},
	}

	defaultServer := os.Getenv("PLANCTL_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:3000"
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "planner or gateway base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "request timeout")

	root.AddCommand(createCmd(), generateCmd(), plansCmd(), showCmd(), downloadCmd(), catalogCmd(), statusCmd())
	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
