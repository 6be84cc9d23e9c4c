package types

import "time"

// HTTPConfig holds the shared HTTP client settings.
type HTTPConfig struct {
	// Timeout is the per-request timeout (default 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Proxy is an optional proxy URL applied to all requests.
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty"`

	// MaxAttempts is the total number of attempts for retryable requests
	// (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RetryBaseDelay is the first backoff delay; it doubles per attempt
	// (default 500ms).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay"`

	// FetchDelay is the minimum spacing between outbound requests
	// (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`
}

// PublisherConfig identifies the publisher whose release pages are resolved.
type PublisherConfig struct {
	// Domain is matched against candidate hosts (e.g. "globenewswire.com").
	Domain string `json:"domain" yaml:"domain"`

	// ReleasePath is matched against candidate paths (e.g. "news-release").
	ReleasePath string `json:"release_path" yaml:"release_path"`

	// BaseURL is the publisher origin used for site search and for
	// resolving relative links (e.g. "https://www.globenewswire.com").
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// SearchConfig holds provider settings.
type SearchConfig struct {
	// GoogleAPIKey and GoogleSearchCX enable the keyed search API. Both are
	// required; without them the provider is skipped.
	GoogleAPIKey   string `json:"google_api_key,omitempty" yaml:"google_api_key,omitempty"`
	GoogleSearchCX string `json:"google_search_cx,omitempty" yaml:"google_search_cx,omitempty"`

	// EnableBrowser adds the headless-browser site search provider.
	EnableBrowser bool `json:"enable_browser" yaml:"enable_browser"`

	// ShortWords is the number of leading headline words used by the
	// short-headline search modes (default 7).
	ShortWords int `json:"short_words" yaml:"short_words"`
}

// FieldOrder names the column order of the input feed.
type FieldOrder string

const (
	OrderTickerDate FieldOrder = "ticker-date"
	OrderDateTicker FieldOrder = "date-ticker"
)

// BatchConfig holds settings for the batch processor.
type BatchConfig struct {
	// RowDelay is the fixed pause between rows (default 4s).
	RowDelay time.Duration `json:"row_delay" yaml:"row_delay"`

	// FieldOrder selects the input column order (default ticker-date).
	FieldOrder FieldOrder `json:"field_order" yaml:"field_order"`

	// SkipHeader drops the first input record.
	SkipHeader bool `json:"skip_header" yaml:"skip_header"`

	// LedgerPath enables the SQLite resolution ledger when non-empty.
	LedgerPath string `json:"ledger_path,omitempty" yaml:"ledger_path,omitempty"`

	// SummaryPath, when non-empty, receives a YAML run summary.
	SummaryPath string `json:"summary_path,omitempty" yaml:"summary_path,omitempty"`
}

// Config groups all settings for a run.
type Config struct {
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	Publisher PublisherConfig `json:"publisher" yaml:"publisher"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Batch     BatchConfig     `json:"batch" yaml:"batch"`
}

// Defaults returned by DefaultConfig.
const (
	DefaultTimeout        = 15 * time.Second
	DefaultUserAgent      = "Mozilla/5.0 (compatible; release-resolver/0.1)"
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = 500 * time.Millisecond
	DefaultFetchDelay     = 1 * time.Second
	DefaultRowDelay       = 4 * time.Second
	DefaultShortWords     = 7
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:        DefaultTimeout,
			UserAgent:      DefaultUserAgent,
			MaxAttempts:    DefaultMaxAttempts,
			RetryBaseDelay: DefaultRetryBaseDelay,
			FetchDelay:     DefaultFetchDelay,
		},
		Publisher: PublisherConfig{
			Domain:      "globenewswire.com",
			ReleasePath: "news-release",
			BaseURL:     "https://www.globenewswire.com",
		},
		Search: SearchConfig{
			ShortWords: DefaultShortWords,
		},
		Batch: BatchConfig{
			RowDelay:   DefaultRowDelay,
			FieldOrder: OrderTickerDate,
		},
	}
}
