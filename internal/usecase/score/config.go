package score

import (
	"fmt"
	"time"

	pkgconfig "rss-portal/pkg/config"
)

// Config controls prompt construction and the batch loop.
type Config struct {
	// Interests and Dislikes are embedded verbatim in every prompt.
	Interests string
	Dislikes  string

	LikedExamples    int
	DislikedExamples int
	// ClickedExamples may be raised up to 10.
	ClickedExamples int

	// SourceSummaryRunes bounds the article summary placed in the prompt.
	SourceSummaryRunes int

	// PromptSummaryRunes is the length the model is asked to stay within.
	PromptSummaryRunes int

	// SummaryMaxRunes bounds the stored score summary (130-200).
	SummaryMaxRunes int

	// Delay is the pause after every article of a batch.
	Delay time.Duration
}

const (
	DefaultExamples           = 5
	MaxClickedExamples        = 10
	DefaultSourceSummaryRunes = 300
	DefaultPromptSummaryRunes = 130
	DefaultSummaryMaxRunes    = 200
	MinSummaryMaxRunes        = 130
	DefaultDelay              = time.Second
)

// DefaultConfig returns the built-in settings with the given interest texts.
func DefaultConfig(interests, dislikes string) Config {
	return Config{
		Interests:          interests,
		Dislikes:           dislikes,
		LikedExamples:      DefaultExamples,
		DislikedExamples:   DefaultExamples,
		ClickedExamples:    DefaultExamples,
		SourceSummaryRunes: DefaultSourceSummaryRunes,
		PromptSummaryRunes: DefaultPromptSummaryRunes,
		SummaryMaxRunes:    DefaultSummaryMaxRunes,
		Delay:              DefaultDelay,
	}
}

func (c Config) Validate() error {
	if err := pkgconfig.ValidateIntRange("liked examples", c.LikedExamples, 0, DefaultExamples); err != nil {
		return err
	}
	if err := pkgconfig.ValidateIntRange("disliked examples", c.DislikedExamples, 0, DefaultExamples); err != nil {
		return err
	}
	if err := pkgconfig.ValidateIntRange("clicked examples", c.ClickedExamples, 0, MaxClickedExamples); err != nil {
		return err
	}
	if c.SourceSummaryRunes <= 0 {
		return fmt.Errorf("source summary runes must be positive, got %d", c.SourceSummaryRunes)
	}
	if err := pkgconfig.ValidateIntRange("summary max runes", c.SummaryMaxRunes, MinSummaryMaxRunes, DefaultSummaryMaxRunes); err != nil {
		return err
	}
	if err := pkgconfig.ValidateNonNegativeDuration(c.Delay); err != nil {
		return fmt.Errorf("invalid delay: %w", err)
	}
	return nil
}

// LoadConfig reads SCORE_DELAY, SCORE_SUMMARY_MAX and SCORE_CLICKED_EXAMPLES
// on top of the given interest texts.
func LoadConfig(interests, dislikes string) (Config, error) {
	cfg := DefaultConfig(interests, dislikes)
	cfg.Delay = pkgconfig.GetEnvDuration("SCORE_DELAY", DefaultDelay)
	cfg.SummaryMaxRunes = pkgconfig.GetEnvInt("SCORE_SUMMARY_MAX", DefaultSummaryMaxRunes)
	cfg.ClickedExamples = pkgconfig.GetEnvInt("SCORE_CLICKED_EXAMPLES", DefaultExamples)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	return cfg, nil
}
