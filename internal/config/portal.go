// Package config loads the operator's portal profile: the interest texts
// embedded in scoring prompts and the feeds seeded into an empty store.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	pkgconfig "rss-portal/pkg/config"
)

// DefaultPortalConfigPath is read when PORTAL_CONFIG is unset.
const DefaultPortalConfigPath = "config/portal.yaml"

// FeedConfig is one default subscription.
type FeedConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// PortalConfig is the YAML profile.
type PortalConfig struct {
	Interests    string       `yaml:"interests"`
	Dislikes     string       `yaml:"dislikes"`
	DefaultFeeds []FeedConfig `yaml:"default_feeds"`
}

const defaultInterests = `【技術分野】
- Web開発（フロントエンド、バックエンド）
- AIツールとAIコーディング
- 新しい開発ツールやプラットフォーム

【重視するポイント】
- 具体的な実装例やコード例がある
- すぐに試せる内容
- 比較検証や計測の結果がある`

const defaultDislikes = `【興味がない分野】
- ゲーム開発
- 資格試験やキャリア論

【避けたい記事の特徴】
- 具体的な成果物のない感想や考察
- 煽り気味のタイトルで中身が薄い`

// DefaultPortalConfig is used when no profile file exists.
func DefaultPortalConfig() PortalConfig {
	return PortalConfig{
		Interests: defaultInterests,
		Dislikes:  defaultDislikes,
		DefaultFeeds: []FeedConfig{
			{Name: "Qiita 人気", URL: "https://qiita.com/popular-items/feed", Category: "tech"},
			{Name: "Zenn トレンド", URL: "https://zenn.dev/feed", Category: "tech"},
		},
	}
}

// LoadPortalConfig reads the profile at path. A missing file yields the
// defaults; empty fields in the file keep their default values.
func LoadPortalConfig(path string) (*PortalConfig, error) {
	cfg := DefaultPortalConfig()

	// #nosec G304 -- path comes from the operator's environment
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("portal config not found, using defaults", slog.String("path", path))
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read portal config: %w", err)
	}

	var file PortalConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse portal config: %w", err)
	}
	if s := strings.TrimSpace(file.Interests); s != "" {
		cfg.Interests = s
	}
	if s := strings.TrimSpace(file.Dislikes); s != "" {
		cfg.Dislikes = s
	}
	if len(file.DefaultFeeds) > 0 {
		cfg.DefaultFeeds = file.DefaultFeeds
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("portal config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadPortalConfigFromEnv reads the file named by PORTAL_CONFIG.
// USER_INTERESTS and USER_DISLIKES override the file.
func LoadPortalConfigFromEnv() (*PortalConfig, error) {
	cfg, err := LoadPortalConfig(pkgconfig.GetEnvString("PORTAL_CONFIG", DefaultPortalConfigPath))
	if err != nil {
		return nil, err
	}
	cfg.Interests = pkgconfig.GetEnvString("USER_INTERESTS", cfg.Interests)
	cfg.Dislikes = pkgconfig.GetEnvString("USER_DISLIKES", cfg.Dislikes)
	return cfg, nil
}

// Validate requires a name and URL for every default feed.
func (c *PortalConfig) Validate() error {
	for i, f := range c.DefaultFeeds {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("default_feeds[%d]: name is required", i)
		}
		if strings.TrimSpace(f.URL) == "" {
			return fmt.Errorf("default_feeds[%d]: url is required", i)
		}
	}
	return nil
}
