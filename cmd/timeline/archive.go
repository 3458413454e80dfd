package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pbaille/timeline/internal/api"
)

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the local archive backend",
	}
	cmd.AddCommand(archiveImportCmd())
	cmd.AddCommand(archiveServeCmd())
	cmd.AddCommand(archiveDatesCmd())
	cmd.AddCommand(archiveShowCmd())
	return cmd
}

func archiveImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [path...]",
		Short: "Import entry JSON, markdown and text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			s, err := e.archive()
			if err != nil {
				return err
			}
			defer s.Close()

			total := 0
			for _, path := range args {
				n, err := s.ImportPath(cmd.Context(), path)
				total += n
				if err != nil {
					return err
				}
				fmt.Printf("Imported %d entries from %s\n", n, path)
			}
			fmt.Printf("Total: %d entries\n", total)
			return nil
		},
	}
}

func archiveServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the archive as a timeline backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			s, err := e.archive()
			if err != nil {
				return err
			}
			defer s.Close()

			b := api.NewBackend(s, e.cfg.Token, e.logger)
			e.logger.Info("serving archive", "addr", addr, "db", e.cfg.DB, "auth", e.cfg.Token != "")
			return api.Run(addr, b.Handler(), e.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9000", "listen address")
	return cmd
}

func archiveDatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dates",
		Short: "List the days holding entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(v)
			if err != nil {
				return err
			}
			s, err := e.archive()
			if err != nil {
				return err
			}
			defer s.Close()

			dates, err := s.Dates(cmd.Context())
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				fmt.Println("No entries yet. Import some with: timeline archive import <path>")
				return nil
			}
			for _, d := range dates {
				fmt.Println(d)
			}
			return nil
		},
	}
}

func archiveShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [YYYY-MM-DD]",
		Short: "List the raw archive entries of a day",
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
			s, err := e.archive()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.EntriesForDate(cmd.Context(), date)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				summary := entry.Title
				if summary == "" {
					summary = entry.Description
				}
				fmt.Printf("%s  %-24s %-22s %s\n", shortID(entry.ID), entry.TimelineStamp(), entry.EntryType, truncate(summary, 60))
			}
			return nil
		},
	}
}
