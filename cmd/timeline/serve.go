package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaille/timeline/internal/api"
	"github.com/pbaille/timeline/internal/printer"
	"github.com/pbaille/timeline/internal/store"
	"github.com/pbaille/timeline/internal/timeline"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline front-end API",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = e.cfg.Addr
			}

			c := e.client()
			cache, err := e.artifacts(c)
			if err != nil {
				return err
			}
			session := store.NewSession(store.NewEntries(c, e.logger), nil)
			fe := api.NewFrontend(e.nav, session, e.logger, api.WithFinances(c), api.WithArtifacts(cache))
			e.logger.Info("serving timeline", "addr", addr, "backend", e.cfg.BackendURL)
			return api.Run(addr, fe.Handler(), e.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func filtersCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the entry filters, with counts for --date",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			in := timeline.Input{Date: e.nav.Today()}
			if date != "" {
				d, err := e.nav.Parse(date)
				if err != nil {
					return err
				}
				entries, err := e.client().Entries(cmd.Context(), date)
				if err != nil {
					return fmt.Errorf("load %s: %w", date, err)
				}
				in.Date, in.Entries = d, entries
			}
			view := timeline.NewBuilder(e.nav, nil).Build(in)
			printer.New(nil).Filters(view.Filters)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "count the entries of this day (YYYY-MM-DD)")
	return cmd
}
