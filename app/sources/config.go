package sources

import (
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/typefeed/typefeed/app/news"
)

// Config is the YAML source registry: which publishers to poll and
// how. The NewsAPI source is not listed here, it is driven purely by
// whether an API key is configured.
type Config struct {
	Feeds    []FeedConfig    `yaml:"feeds"`
	Scrapers []ScraperConfig `yaml:"scrapers"`
}

type FeedConfig struct {
	Name       string            `yaml:"name"`
	Categories map[string]string `yaml:"categories"` // category -> feed URL
}

type ScraperConfig struct {
	Name      string          `yaml:"name"`
	URL       string          `yaml:"url"`
	Category  string          `yaml:"category"`
	Selectors ScrapeSelectors `yaml:"selectors"`
}

// LoadConfig reads and validates the source registry file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", path, err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	for i, feed := range c.Feeds {
		if feed.Name == "" {
			return fmt.Errorf("feed at index %d has no name", i)
		}
		if len(feed.Categories) == 0 {
			return fmt.Errorf("feed %q has no category URLs", feed.Name)
		}
		for category, feedURL := range feed.Categories {
			if _, ok := news.ParseCategory(category); !ok {
				return fmt.Errorf("feed %q references unknown category %q", feed.Name, category)
			}
			if feedURL == "" {
				return fmt.Errorf("feed %q has an empty URL for category %q", feed.Name, category)
			}
		}
	}

	for i, scraper := range c.Scrapers {
		if scraper.Name == "" {
			return fmt.Errorf("scraper at index %d has no name", i)
		}
		if scraper.URL == "" {
			return fmt.Errorf("scraper %q has no URL", scraper.Name)
		}
		if _, ok := news.ParseCategory(scraper.Category); !ok {
			return fmt.Errorf("scraper %q references unknown category %q", scraper.Name, scraper.Category)
		}
	}

	return nil
}

// Build instantiates every configured source plus the NewsAPI source.
func (c *Config) Build(apiKey string, client *http.Client, userAgent string) []Source {
	var built []Source

	for _, feed := range c.Feeds {
		urls := make(map[news.Category]string, len(feed.Categories))
		for category, feedURL := range feed.Categories {
			parsed, _ := news.ParseCategory(category)
			urls[parsed] = feedURL
		}
		built = append(built, NewFeedSource(feed.Name, urls, client, userAgent))
	}

	built = append(built, NewNewsAPISource(apiKey, client, userAgent))

	for _, scraper := range c.Scrapers {
		category, _ := news.ParseCategory(scraper.Category)
		built = append(built, NewScrapeSource(scraper.Name, scraper.URL, category, scraper.Selectors, client))
	}

	return built
}
