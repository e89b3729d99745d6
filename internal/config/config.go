// Package config holds the typed configuration of a scrape job.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"recordscrape/lib/configutil"
	"recordscrape/lib/extract"
	"recordscrape/lib/fetch"
	"recordscrape/lib/formula"
	"recordscrape/lib/notify"
	"recordscrape/lib/pagecache"
	"recordscrape/lib/tabular"
	"recordscrape/lib/textutil"
	"strings"
	"time"

	"dario.cat/mergo"
)

// DefaultName is the config file a job is read from when none is given.
const DefaultName = "recordscrape.json5"

// UrlColumn is always appended before the derived column.
const UrlColumn = "URL"

type UrlFormula struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

type SpecialFormula struct {
	Name     string `json:"name"`
	Congress int    `json:"congress"`
	BaseUrl  string `json:"base_url"`
}

type Extraction struct {
	Start         string   `json:"start"`
	End           string   `json:"end"`
	AlternateEnds []string `json:"alternate_ends"`
	// Patterns treats start and end as regular expressions instead of literals.
	Patterns bool `json:"patterns"`
	// SingleLine stops the extracted text from spanning lines.
	SingleLine bool `json:"single_line"`
	StripTags  bool `json:"strip_tags"`
	Trim       bool `json:"trim"`
}

type Http struct {
	FollowRedirects  bool   `json:"follow_redirects"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	UserAgent        string `json:"user_agent"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// DebugDir receives a dump of every request and response.
	DebugDir string `json:"debug_dir"`
}

type Logging struct {
	Level string `json:"level"`
	JSON  bool   `json:"json"`
}

type Config struct {
	SourceFile       string          `json:"source_file"`
	DestinationFile  string          `json:"destination_file"`
	Delimiter        string          `json:"delimiter"`
	IdentifierColumn string          `json:"identifier_column"`
	DerivedColumn    string          `json:"derived_column"`
	UrlFormula       *UrlFormula     `json:"url_formula"`
	SpecialFormula   *SpecialFormula `json:"special_formula"`
	Extraction       Extraction      `json:"extraction"`
	// RequestDelaySeconds is the pause between two requests, a negative
	// value disables it.
	RequestDelaySeconds float64            `json:"request_delay_seconds"`
	CleanupStrings      []string           `json:"cleanup_strings"`
	Workers             int                `json:"workers"`
	TimeoutSeconds      int                `json:"timeout_seconds"`
	Http                Http               `json:"http"`
	Cache               pagecache.Config   `json:"cache"`
	Notify              notify.EmailConfig `json:"notify"`
	Logging             Logging            `json:"logging"`
}

func Defaults() Config {
	return Config{
		RequestDelaySeconds: fetch.DefaultDelay.Seconds(),
		Workers:             1,
		Http: Http{
			TimeoutSeconds: 30,
			UserAgent:      fetch.DefaultUserAgent,
		},
		Logging: Logging{Level: "info"},
	}
}

// WithDefaults fills every zero field of c from Defaults.
func (c Config) WithDefaults() (Config, error) {
	out := c
	err := mergo.Merge(&out, Defaults())
	if err != nil {
		return c, err
	}
	if out.DestinationFile == "" && out.SourceFile != "" {
		out.DestinationFile = DefaultDestination(out.SourceFile)
	}
	return out, nil
}

// DefaultDestination places the output next to the source, "bills.csv"
// becomes "bills.scraped.csv".
func DefaultDestination(source string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + ".scraped" + ext
}

// Load reads the config file at path with its local override and applies
// defaults. The result is not validated.
func Load(path string) (Config, error) {
	c, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config file %s not found (run `recordscrape init` to create one)", path)
	}
	if err != nil {
		return Config{}, err
	}
	c, err = c.WithDefaults()
	if err != nil {
		return Config{}, err
	}

	// relative paths are resolved from the directory of the config file
	dir := filepath.Dir(path)
	c.SourceFile = resolve(dir, c.SourceFile)
	c.DestinationFile = resolve(dir, c.DestinationFile)
	c.Http.DebugDir = resolve(dir, c.Http.DebugDir)
	if c.Cache.File != ":memory:" {
		c.Cache.File = resolve(dir, c.Cache.File)
	}
	return c, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func (c Config) RequestDelay() time.Duration {
	if c.RequestDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestDelaySeconds * float64(time.Second))
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) HttpTimeout() time.Duration {
	return time.Duration(c.Http.TimeoutSeconds) * time.Second
}

func (c Config) ParseDelimiter() (rune, error) {
	return tabular.ParseDelimiter(c.Delimiter, c.SourceFile)
}

// Formula builds the configured url formula.
func (c Config) Formula() (formula.Formula, error) {
	if c.SpecialFormula != nil {
		return formula.Lookup(c.SpecialFormula.Name, formula.Params{
			Congress: c.SpecialFormula.Congress,
			BaseUrl:  c.SpecialFormula.BaseUrl,
		})
	}
	if c.UrlFormula != nil {
		return formula.Generic{
			Prefix: c.UrlFormula.Prefix,
			Suffix: c.UrlFormula.Suffix,
		}, nil
	}
	return nil, fmt.Errorf("neither url_formula nor special_formula is set")
}

// ExtractSpec turns the extraction settings into an extract.Spec. Cleanup
// strings and trimming that come with the formula are added to the
// configured ones.
func (c Config) ExtractSpec(f formula.Formula) extract.Spec {
	quote := textutil.Escape
	if c.Extraction.Patterns {
		quote = func(s string) string { return s }
	}

	alternates := make([]string, len(c.Extraction.AlternateEnds))
	for i, alt := range c.Extraction.AlternateEnds {
		alternates[i] = quote(alt)
	}

	cleanup := append([]string{}, c.CleanupStrings...)
	formulaCleanup := formula.CleanupOf(f)
	cleanup = append(cleanup, formulaCleanup...)

	return extract.Spec{
		Start:         quote(c.Extraction.Start),
		End:           quote(c.Extraction.End),
		Alternates:    alternates,
		AllowNewlines: !c.Extraction.SingleLine,
		StripTags:     c.Extraction.StripTags,
		Cleanup:       cleanup,
		Trim:          c.Extraction.Trim || len(formulaCleanup) > 0,
	}
}
