package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rss-portal/internal/app"
	"rss-portal/internal/domain/entity"
	"rss-portal/internal/utils/text"
)

const titleWidth = 60

type statsOutput struct {
	Feeds     int `json:"feeds"`
	Total     int `json:"total_articles"`
	Scored    int `json:"scored_articles"`
	HighScore int `json:"high_score_articles"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show article counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				st, err := a.Articles.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := statsOutput{Feeds: st.Feeds, Total: st.Total, Scored: st.Scored, HighScore: st.HighScore}
				if asJSON {
					return writeJSON(cmd, out)
				}
				fmt.Fprintln(cmd.OutOrStdout(), keyValueTable([][]string{
					{"Active feeds", strconv.Itoa(out.Feeds)},
					{"Articles", strconv.Itoa(out.Total)},
					{"Scored", strconv.Itoa(out.Scored)},
					{"High score", strconv.Itoa(out.HighScore)},
				}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the counts as JSON")
	return cmd
}

func newArticlesCommand(ctx *commandContext) *cobra.Command {
	var (
		minScore int
		limit    int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List the articles that would be published",
		RunE: func(cmd *cobra.Command, args []string) error {
			score := entity.Score(minScore)
			if score != entity.Unscored && (score < entity.MinScore || score > entity.MaxScore) {
				return fmt.Errorf("--min-score must be between %d and %d", entity.MinScore, entity.MaxScore)
			}
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				if score == entity.Unscored {
					score = a.Publish.Config.MinScore
				}
				n := limit
				if n <= 0 {
					n = a.Publish.Config.Limit
				}
				doc, err := a.Publish.Generate(cmd.Context(), score, n)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, doc.Articles)
				}
				rows := make([][]string, 0, len(doc.Articles))
				for _, item := range doc.Articles {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						strconv.Itoa(item.Score),
						item.FeedName,
						text.TruncateWithEllipsis(item.Title, titleWidth),
						fmt.Sprintf("+%d/-%d", item.Likes, item.Dislikes),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Score", "Feed", "Title", "Feedback"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&minScore, "min-score", 0, "Lowest score to include (0 uses MIN_SCORE_TO_DISPLAY)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum articles (0 uses MAX_DISPLAY_ARTICLES)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the articles as JSON")
	return cmd
}
