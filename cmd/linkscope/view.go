package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tracive/linkscope/cmd/linkscope/internal/ui"
	"github.com/tracive/linkscope/internal/config"
	"github.com/tracive/linkscope/internal/dataset"
	"github.com/tracive/linkscope/pkg/client"
	"github.com/tracive/linkscope/pkg/graph"
	"github.com/tracive/linkscope/pkg/viewer"
)

// entityFetcher scopes every fetch to one entity's neighborhood instead of an
// investigation.
type entityFetcher struct {
	client *client.Client
	id     string
	depth  int
}

func (f *entityFetcher) FetchGraph(ctx context.Context, _ string) ([]graph.Node, []graph.Link, error) {
	return f.client.FetchEntity(ctx, f.id, f.depth)
}

func newViewCommand() *cobra.Command {
	var (
		configPath    string
		serverURL     string
		investigation string
		entityID      string
		depth         int
		dataPath      string
		limit         int
		liveUpdates   bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the interactive graph view",
		Long: `Open the force-directed graph view in the terminal.

By default the graph comes from the dashboard API (see --server). With --data
the viewer reads a local dataset file instead and needs no server. With
--entity the view centers on one entity's neighborhood instead of an
investigation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if serverURL == "" {
				serverURL = cfg.Client.BaseURL
			}
			if limit == 0 {
				limit = cfg.Client.Limit
			}

			var (
				fetcher   viewer.Fetcher
				live      <-chan client.Notification
				closeLive func()
			)

			switch {
			case dataPath != "":
				fetcher = dataset.NewFetcher(dataPath)
			case entityID != "":
				fetcher = &entityFetcher{
					client: client.New(serverURL, client.WithLimit(limit)),
					id:     entityID,
					depth:  depth,
				}
			default:
				fetcher = client.New(serverURL, client.WithLimit(limit))
			}

			if liveUpdates && dataPath == "" {
				listener, err := client.Listen(cmd.Context(), serverURL, nil)
				switch {
				case err != nil && cmd.Flags().Changed("live"):
					return fmt.Errorf("subscribe to live updates: %w", err)
				case err == nil:
					live = listener.Notifications()
					closeLive = func() { listener.Close() }
				}
				// The default-on subscription is best effort; a server
				// without a live channel still serves the graph.
			}
			if closeLive != nil {
				defer closeLive()
			}

			// No logger in TUI mode: stderr output would tear the screen.
			session := viewer.NewSession(fetcher, &viewer.Options{
				Force:    cfg.ForceOptions(),
				Viewport: cfg.ViewportOptions(),
			}, nil)
			defer session.Close()

			p := tea.NewProgram(
				ui.NewModel(session, investigation, live),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run viewer: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "graph API base URL")
	cmd.Flags().StringVarP(&investigation, "investigation", "i", "", "investigation id to scope the graph to")
	cmd.Flags().StringVarP(&entityID, "entity", "e", "", "center the view on one entity's neighborhood")
	cmd.Flags().IntVar(&depth, "depth", 1, "neighborhood depth for --entity")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "local dataset file instead of a server")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum nodes to fetch")
	cmd.Flags().BoolVar(&liveUpdates, "live", true, "refresh automatically when the server's dataset changes")

	return cmd
}
