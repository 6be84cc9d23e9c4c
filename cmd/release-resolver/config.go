// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/release-resolver/internal/secrets"
	"github.com/pdiddy/release-resolver/pkg/types"
)

// bindEnv maps the unprefixed environment variables used by existing
// deployments onto config keys.
func bindEnv() {
	viper.BindEnv("search.google_api_key", "GOOGLE_API_KEY", "RELEASE_RESOLVER_SEARCH_GOOGLE_API_KEY")
	viper.BindEnv("search.google_search_cx", "GOOGLE_SEARCH_CX", "RELEASE_RESOLVER_SEARCH_GOOGLE_SEARCH_CX")
	viper.BindEnv("http.user_agent", "USER_AGENT", "RELEASE_RESOLVER_HTTP_USER_AGENT")
	viper.BindEnv("http.proxy", "PROXY", "RELEASE_RESOLVER_HTTP_PROXY")
	viper.BindEnv("http.timeout", "REQUEST_TIMEOUT", "RELEASE_RESOLVER_HTTP_TIMEOUT")
}

func setDefaults() {
	d := types.DefaultConfig()

	viper.SetDefault("http.timeout", d.HTTP.Timeout)
	viper.SetDefault("http.user_agent", d.HTTP.UserAgent)
	viper.SetDefault("http.max_attempts", d.HTTP.MaxAttempts)
	viper.SetDefault("http.retry_base_delay", d.HTTP.RetryBaseDelay)
	viper.SetDefault("http.fetch_delay", d.HTTP.FetchDelay)

	viper.SetDefault("publisher.domain", d.Publisher.Domain)
	viper.SetDefault("publisher.release_path", d.Publisher.ReleasePath)
	viper.SetDefault("publisher.base_url", d.Publisher.BaseURL)

	viper.SetDefault("search.short_words", d.Search.ShortWords)
	viper.SetDefault("search.enable_browser", d.Search.EnableBrowser)

	viper.SetDefault("batch.row_delay", d.Batch.RowDelay)
	viper.SetDefault("batch.field_order", string(d.Batch.FieldOrder))
}

// loadConfig assembles the run configuration from flags, environment,
// config file and the secrets directory, in that order of precedence.
func loadConfig() types.Config {
	cfg := types.Config{
		HTTP: types.HTTPConfig{
			Timeout:        duration("http.timeout"),
			UserAgent:      viper.GetString("http.user_agent"),
			Proxy:          viper.GetString("http.proxy"),
			MaxAttempts:    viper.GetInt("http.max_attempts"),
			RetryBaseDelay: duration("http.retry_base_delay"),
			FetchDelay:     duration("http.fetch_delay"),
		},
		Publisher: types.PublisherConfig{
			Domain:      viper.GetString("publisher.domain"),
			ReleasePath: viper.GetString("publisher.release_path"),
			BaseURL:     viper.GetString("publisher.base_url"),
		},
		Search: types.SearchConfig{
			GoogleAPIKey:   viper.GetString("search.google_api_key"),
			GoogleSearchCX: viper.GetString("search.google_search_cx"),
			EnableBrowser:  viper.GetBool("search.enable_browser"),
			ShortWords:     viper.GetInt("search.short_words"),
		},
		Batch: types.BatchConfig{
			RowDelay:    duration("batch.row_delay"),
			FieldOrder:  types.FieldOrder(viper.GetString("batch.field_order")),
			SkipHeader:  viper.GetBool("batch.skip_header"),
			LedgerPath:  viper.GetString("batch.ledger_path"),
			SummaryPath: viper.GetString("batch.summary_path"),
		},
	}

	cfg.Search.GoogleAPIKey = loadedSecrets.Or(cfg.Search.GoogleAPIKey, secrets.GoogleAPIKey)
	cfg.Search.GoogleSearchCX = loadedSecrets.Or(cfg.Search.GoogleSearchCX, secrets.GoogleSearchCX)
	return cfg
}

// duration reads a duration setting. A bare number is taken as seconds, so
// REQUEST_TIMEOUT=20 means 20s.
func duration(key string) time.Duration {
	if raw, ok := viper.Get(key).(string); ok {
		if secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return viper.GetDuration(key)
}
