package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"rss-portal/internal/app"
	feedUC "rss-portal/internal/usecase/feed"
)

func newFeedsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Manage feed subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newFeedsListCommand(ctx),
		newFeedsAddCommand(ctx),
		newFeedsImportCommand(ctx),
	)
	return cmd
}

func newFeedsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				feeds, err := a.Feeds.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, feeds)
				}
				rows := make([][]string, 0, len(feeds))
				for _, f := range feeds {
					last := "-"
					if f.LastFetchedAt != nil {
						last = f.LastFetchedAt.Local().Format(time.DateTime)
					}
					rows = append(rows, []string{strconv.FormatInt(f.ID, 10), f.Name, f.Category, f.URL, last})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Category", "URL", "Last fetched"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the feeds as JSON")
	return cmd
}

func newFeedsAddCommand(ctx *commandContext) *cobra.Command {
	var in feedUC.AddInput
	cmd := &cobra.Command{
		Use:   "add --name NAME --url URL",
		Short: "Subscribe to a feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				inserted, err := a.Feeds.Add(cmd.Context(), in)
				if err != nil {
					return err
				}
				if !inserted {
					fmt.Fprintf(cmd.OutOrStdout(), "Feed already registered: %s\n", in.URL)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added feed %s\n", in.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.URL, "url", "", "Feed URL")
	cmd.Flags().StringVar(&in.Category, "category", "", "Category label")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newFeedsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Register the feeds listed in OPML_FILE",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				n, err := a.Feeds.ImportOPML(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d feeds from %s\n", n, a.Feeds.OPMLPath)
				return nil
			})
		},
	}
}
