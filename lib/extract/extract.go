// Package extract pulls the text between two boundaries out of a page.
package extract

import (
	"errors"
	"fmt"
	"recordscrape/lib/htmlutil"
	"regexp"
	"strings"
)

var ErrBoundariesNotFound = errors.New("could not locate the expected boundaries for this record")

// Spec describes where the wanted text sits on a page.
//
// Start, End and Alternates are patterns, literal boundaries should be passed
// through textutil.Escape first.
type Spec struct {
	Start string
	End   string
	// Alternates are tried in order when End does not match.
	Alternates []string
	// AllowNewlines lets the captured span cross line boundaries.
	AllowNewlines bool

	// StripTags flattens the captured html fragment to plain text.
	StripTags bool
	// Cleanup lists literal substrings removed from the captured text.
	Cleanup []string
	// Trim removes leading and trailing whitespace last.
	Trim bool
}

// Extractor is a compiled Spec, it is safe for concurrent use.
type Extractor struct {
	spec     Spec
	patterns []boundary
}

type boundary struct {
	re *regexp.Regexp
	// span is the submatch index of the captured text, groups inside the
	// start pattern come before it.
	span int
}

func (s Spec) Compile() (*Extractor, error) {
	if s.Start == "" {
		return nil, fmt.Errorf("start boundary is empty")
	}
	ends := append([]string{s.End}, s.Alternates...)

	flags := ""
	if s.AllowNewlines {
		flags = "(?s)"
	}

	start, err := regexp.Compile(flags + s.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid boundary pattern: %w", err)
	}
	span := start.NumSubexp() + 1

	patterns := make([]boundary, 0, len(ends))
	for i, end := range ends {
		if end == "" {
			return nil, fmt.Errorf("end boundary %d is empty", i)
		}
		re, err := regexp.Compile(flags + "(?:" + s.Start + ")(.+?)(?:" + end + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid boundary pattern: %w", err)
		}
		patterns = append(patterns, boundary{re: re, span: span})
	}

	return &Extractor{spec: s, patterns: patterns}, nil
}

// Extract returns the text strictly between the first occurrence of the start
// boundary and the first occurrence of an end boundary that follows it.
// End boundaries are tried in order, ErrBoundariesNotFound is returned when
// none of them match.
func (e *Extractor) Extract(page string) (string, error) {
	for _, b := range e.patterns {
		groups := b.re.FindStringSubmatch(page)
		if groups == nil {
			continue
		}
		return e.clean(groups[b.span])
	}
	return "", ErrBoundariesNotFound
}

func (e *Extractor) clean(text string) (string, error) {
	if e.spec.StripTags {
		plain, err := htmlutil.PlainText(text)
		if err != nil {
			return "", err
		}
		text = plain
	}
	for _, c := range e.spec.Cleanup {
		if c == "" {
			continue
		}
		text = strings.ReplaceAll(text, c, "")
	}
	if e.spec.Trim {
		text = strings.TrimSpace(text)
	}
	return text, nil
}

// Extract compiles spec and runs it against page once.
func Extract(page string, spec Spec) (string, error) {
	e, err := spec.Compile()
	if err != nil {
		return "", err
	}
	return e.Extract(page)
}
