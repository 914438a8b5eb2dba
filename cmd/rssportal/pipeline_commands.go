package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"rss-portal/internal/app"
	"rss-portal/internal/domain/entity"
	fetchUC "rss-portal/internal/usecase/fetch"
	refreshUC "rss-portal/internal/usecase/refresh"
	scoreUC "rss-portal/internal/usecase/score"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch new articles from every active feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Fetch.FetchAllWithLimit(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), fetchTable(result))
				printErrors(cmd, result.Errors)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum new articles (0 uses MAX_ARTICLES_PER_FETCH)")
	return cmd
}

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var (
		limit int
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score unscored articles with the language model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				d := delay
				if d <= 0 {
					d = a.Score.Config.Delay
				}
				result, err := a.Score.ScoreBatchWithDelay(cmd.Context(), limit, d)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), batchTable(result))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", scoreUC.DefaultBatchLimit, "Maximum articles to score")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause between model calls (0 uses SCORE_DELAY)")
	return cmd
}

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Write the published article document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				doc, err := a.Publish.Save(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published %d articles to %s\n", doc.Stats.Displayed, a.Publish.Config.OutputPath)
				return nil
			})
		},
	}
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete articles past the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				deleted, err := a.Articles.Cleanup(cmd.Context())
				if err != nil {
					return err
				}
				days := int(a.Articles.Retention / (24 * time.Hour))
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d articles older than %d days\n", deleted, days)
				return nil
			})
		},
	}
}

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	var (
		opts   refreshUC.Options
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run fetch, score, publish and cleanup in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				result, runErr := a.Refresh.Run(cmd.Context(), opts)
				if asJSON {
					if err := writeJSON(cmd, result); err != nil {
						return err
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), refreshTable(result))
					printErrors(cmd, result.Errors)
				}
				if runErr != nil {
					return fmt.Errorf("refresh finished with %d errors", len(result.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&opts.FetchLimit, "fetch-limit", 0, "Maximum new articles (0 uses MAX_ARTICLES_PER_FETCH)")
	cmd.Flags().IntVar(&opts.ScoreLimit, "score-limit", 0, "Maximum articles to score")
	cmd.Flags().DurationVar(&opts.ScoreDelay, "score-delay", 0, "Pause between model calls")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func fetchTable(r fetchUC.Result) string {
	return keyValueTable([][]string{
		{"Feeds processed", strconv.Itoa(r.FeedsProcessed)},
		{"New items", strconv.Itoa(r.Fetched)},
		{"Inserted", strconv.Itoa(r.Inserted)},
		{"Feed errors", strconv.Itoa(len(r.Errors))},
		{"Duration", r.Duration.Round(time.Millisecond).String()},
	})
}

func batchTable(r entity.BatchResult) string {
	return keyValueTable([][]string{
		{"Processed", strconv.Itoa(r.Processed)},
		{"Scored", strconv.Itoa(r.Scored)},
		{"Errors", strconv.Itoa(r.Errors)},
	})
}

func refreshTable(r refreshUC.Result) string {
	return keyValueTable([][]string{
		{"Run", r.RunID},
		{"Inserted", strconv.Itoa(r.Fetch.Inserted)},
		{"Scored", strconv.Itoa(r.Score.Scored)},
		{"Score errors", strconv.Itoa(r.Score.Errors)},
		{"Published", strconv.Itoa(r.Published)},
		{"Deleted", strconv.FormatInt(r.Deleted, 10)},
		{"Total articles", strconv.Itoa(r.Stats.Total)},
		{"Duration", r.Duration.Round(time.Millisecond).String()},
	})
}

func printErrors(cmd *cobra.Command, errs []string) {
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
	}
}
