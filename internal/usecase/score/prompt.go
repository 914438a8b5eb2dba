package score

import (
	"context"
	"fmt"
	"strings"

	"rss-portal/internal/domain/entity"
	"rss-portal/internal/repository"
	"rss-portal/internal/utils/text"
)

// noSummaryPlaceholder stands in for an article without a summary.
const noSummaryPlaceholder = "（概要なし）"

// ArticleInput is the part of an article that goes into a prompt.
type ArticleInput struct {
	Title    string
	Summary  string
	FeedName string
}

// InputFromArticle extracts the prompt fields of a.
func InputFromArticle(a *entity.Article) ArticleInput {
	return ArticleInput{Title: a.Title, Summary: a.Summary, FeedName: a.FeedName}
}

// PromptBuilder renders the scoring instruction for one article.
type PromptBuilder struct {
	feedback repository.FeedbackRepository
	cfg      Config
}

func NewPromptBuilder(feedback repository.FeedbackRepository, cfg Config) *PromptBuilder {
	return &PromptBuilder{feedback: feedback, cfg: cfg}
}

// feedbackSection pairs a feedback kind with its heading.
type feedbackSection struct {
	kind    entity.FeedbackKind
	heading string
	limit   func(Config) int
}

var feedbackSections = []feedbackSection{
	{entity.FeedbackLike, "【過去に高評価した記事】", func(c Config) int { return c.LikedExamples }},
	{entity.FeedbackDislike, "【過去に低評価した記事】", func(c Config) int { return c.DislikedExamples }},
	{entity.FeedbackClick, "【過去にクリックした記事（興味あり）】", func(c Config) int { return c.ClickedExamples }},
}

// Build returns the prompt for in. The only I/O is reading recent feedback
// titles; a read error is returned as is.
func (b *PromptBuilder) Build(ctx context.Context, in ArticleInput) (string, error) {
	var history strings.Builder
	for _, sec := range feedbackSections {
		titles, err := b.feedback.RecentTitles(ctx, sec.kind, sec.limit(b.cfg))
		if err != nil {
			return "", fmt.Errorf("recent %s titles: %w", sec.kind, err)
		}
		if len(titles) == 0 {
			continue
		}
		history.WriteString("\n")
		history.WriteString(sec.heading)
		history.WriteString("\n")
		for _, t := range titles {
			fmt.Fprintf(&history, "- %s\n", t.Title)
		}
	}

	summary := text.Truncate(in.Summary, b.cfg.SourceSummaryRunes)
	if summary == "" {
		summary = noSummaryPlaceholder
	}

	limit := b.cfg.PromptSummaryRunes
	if limit <= 0 {
		limit = DefaultPromptSummaryRunes
	}

	var p strings.Builder
	fmt.Fprintf(&p, "以下の記事を、ユーザーの興味に基づいて1〜5でスコアリングし、%d文字以内の日本語要約を作成してください。\n\n", limit)
	fmt.Fprintf(&p, "【ユーザーの興味分野】\n%s\n\n", b.cfg.Interests)
	fmt.Fprintf(&p, "【興味がない分野】\n%s\n", b.cfg.Dislikes)
	p.WriteString(history.String())
	p.WriteString(`
【スコア基準】
5: 非常に興味深い、すぐ読みたい
4: 興味あり、時間があれば読みたい
3: 普通、特に興味を引かない
2: あまり興味がない
1: 全く興味がない、読む必要なし

`)
	fmt.Fprintf(&p, "【記事情報】\nフィード: %s\nタイトル: %s\n概要: %s\n\n", in.FeedName, in.Title, summary)
	p.WriteString("【出力形式】\n必ず以下のJSON形式のみで出力してください。それ以外のテキストは不要です。\n")
	fmt.Fprintf(&p, `{"score": 数字, "summary": "%d文字以内の日本語要約"}`+"\n", limit)
	return p.String(), nil
}
