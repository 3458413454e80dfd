package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/pbaille/timeline/internal/client"
	"github.com/pbaille/timeline/internal/printer"
	"github.com/pbaille/timeline/internal/store"
	"github.com/pbaille/timeline/internal/timeline"
	"github.com/pbaille/timeline/internal/tui"
)

func dayCmd() *cobra.Command {
	var (
		filters   string
		source    string
		asJSON    bool
		showID    bool
		noFinance bool
	)

	cmd := &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Print the timeline of a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			date, err := e.dateArg(args)
			if err != nil {
				return err
			}
			d, _ := e.nav.Parse(date)

			c := e.client()
			session := store.NewSession(store.NewEntries(c, e.logger), nil)
			set, err := session.Registry().ParseSet(filters)
			if err != nil {
				return err
			}
			session.SetFilters(set)

			entries, err := session.Navigate(cmd.Context(), date)
			if client.IsAuthRequired(err) {
				return fmt.Errorf("%w (set a token with --token or TIMELINE_TOKEN)", err)
			}
			if err != nil {
				return fmt.Errorf("load %s: %w", date, err)
			}

			in := timeline.Input{
				Date:    d,
				Entries: entries,
				Status:  session.Status(),
				Enabled: set,
				Query:   url.Values{},
			}
			if source != "" {
				in.Query.Set("source", source)
			}
			if !noFinance {
				if report, err := c.Finances(cmd.Context()); err != nil {
					e.logger.Debug("finances unavailable", "err", err)
				} else {
					in.Finances = report
				}
			}
			view := timeline.NewBuilder(e.nav, session.Registry()).Build(in)

			if asJSON {
				return printJSON(view)
			}
			p := printer.New(nil)
			p.ShowID = showID
			p.Day(view)
			p.Balance(view.Balance)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filters, "filter", "f", "", "comma separated filters, e.g. image,message")
	cmd.Flags().StringVar(&source, "source", "", "source to show in the header")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")
	cmd.Flags().BoolVar(&showID, "ids", false, "show entry ids")
	cmd.Flags().BoolVar(&noFinance, "no-finances", false, "skip the balance report")

	return cmd
}

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [YYYY-MM-DD]",
		Short: "Browse the timeline interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			date, err := e.dateArg(args)
			if err != nil {
				return err
			}
			d, _ := e.nav.Parse(date)
			session := store.NewSession(store.NewEntries(e.client(), e.logger), nil)
			return tui.Run(cmd.Context(), e.nav, session, d)
		},
	}
}
