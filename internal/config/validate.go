package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Error is a problem with the configuration, found before any page is
// fetched.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate returns every problem found in c joined with errors.Join.
func (c Config) Validate() error {
	var errs []error

	if c.SourceFile == "" {
		errs = append(errs, invalid("source_file", "required"))
	} else if info, err := os.Stat(c.SourceFile); err != nil {
		errs = append(errs, invalid("source_file", "cannot read %s: %s", c.SourceFile, err.Error()))
	} else if info.IsDir() {
		errs = append(errs, invalid("source_file", "%s is a directory", c.SourceFile))
	}

	if c.DestinationFile == "" {
		errs = append(errs, invalid("destination_file", "required"))
	}
	if _, err := c.ParseDelimiter(); err != nil {
		errs = append(errs, invalid("delimiter", "%s", err.Error()))
	}

	if strings.TrimSpace(c.IdentifierColumn) == "" {
		errs = append(errs, invalid("identifier_column", "required"))
	}
	switch strings.TrimSpace(c.DerivedColumn) {
	case "":
		errs = append(errs, invalid("derived_column", "required"))
	case UrlColumn:
		errs = append(errs, invalid("derived_column", "%q is reserved for the generated urls", UrlColumn))
	}

	switch {
	case c.UrlFormula != nil && c.SpecialFormula != nil:
		errs = append(errs, invalid("url_formula", "cannot be combined with special_formula"))
	case c.UrlFormula == nil && c.SpecialFormula == nil:
		errs = append(errs, invalid("url_formula", "either url_formula or special_formula is required"))
	}
	f, err := c.Formula()
	if err == nil {
		_, err = c.ExtractSpec(f).Compile()
		if err != nil {
			errs = append(errs, invalid("extraction", "%s", err.Error()))
		}
	} else if c.SpecialFormula != nil {
		errs = append(errs, invalid("special_formula", "%s", err.Error()))
	}

	if c.Workers < 1 {
		errs = append(errs, invalid("workers", "must be at least 1"))
	}
	if c.TimeoutSeconds < 0 {
		errs = append(errs, invalid("timeout_seconds", "must not be negative"))
	}
	if c.Cache.MaxAgeSeconds < 0 {
		errs = append(errs, invalid("cache.max_age_seconds", "must not be negative"))
	}
	if c.Notify.Server != "" && len(c.Notify.To) == 0 {
		errs = append(errs, invalid("notify.to", "at least one recipient is required"))
	}

	return errors.Join(errs...)
}
