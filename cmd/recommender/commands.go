package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"recommender/internal/api"
	"recommender/internal/domain"
	"recommender/internal/logging"
	"recommender/internal/tui"
)

func runBrowse(cmd *cobra.Command, a *app) error {
	a.engine.Start()
	p := tea.NewProgram(tui.New(a.service, a.cfg.TUI.PlotSentences), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err := p.Run()
	return err
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if a.cfg.Engine.WarmOnStart {
				a.engine.Start()
			}
			srv := &http.Server{
				Addr:         a.cfg.Server.Addr,
				Handler:      api.NewRouter(a.service, api.RouterConfig{RateLimit: a.cfg.Server.RateLimit}),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}
			return api.Serve(cmd.Context(), srv)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides server.addr")
	return cmd
}

func newRecommendCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "recommend [seed...]",
		Short: "Print recommendations for a title or description",
		Long: `Print recommendations for a title or a free-text description.

With no seed the first catalog item is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.ContextWithRequestID(cmd.Context(), logging.GenerateRequestID())
			payload, err := a.service.Recommend(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), payload)
			}
			printRecommendations(cmd.OutOrStdout(), payload)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw payload as JSON")
	return cmd
}

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the catalog summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.service.CatalogSummary(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printRecommendations(w io.Writer, p *domain.RecommendationPayload) {
	if p.ReferenceTitle != nil {
		fmt.Fprintf(w, "Because you picked %s\n", *p.ReferenceTitle)
	} else {
		fmt.Fprintf(w, "Matches for %q\n", p.Seed)
	}
	if len(p.Profile.Categories) > 0 {
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(p.Profile.Categories, ", "))
	}
	if p.Profile.Year != nil {
		fmt.Fprintf(w, "Year: %d\n", *p.Profile.Year)
	}
	fmt.Fprintln(w)
	if len(p.Recommendations) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return
	}
	for i, r := range p.Recommendations {
		year := ""
		if r.Year != nil {
			year = fmt.Sprintf(" (%d)", *r.Year)
		}
		fmt.Fprintf(w, "%2d. %s%s  %.4f\n    %s\n", i+1, r.Title, year, r.Score, r.Insight)
	}
}
