// Package formula builds request urls out of record identifiers.
package formula

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Formula maps an identifier to the url of the record's page.
//
// When a formula cannot build a url for an identifier it returns a
// *Diagnostic, which is a per-record condition and never a reason to stop a
// batch.
type Formula interface {
	Name() string
	Formulate(identifier string) (string, error)
}

// Cleaner is implemented by formulas whose pages leak markup into the
// extracted text.
type Cleaner interface {
	// Cleanup returns literal substrings that should be removed from extracted text.
	Cleanup() []string
}

// Diagnostic is a human-readable explanation stored in place of data when a
// url cannot be built for a single record.
type Diagnostic struct {
	Message string
}

func (d *Diagnostic) Error() string {
	return d.Message
}

const (
	MsgIdentifierRequired = "identifier required"
	MsgNotSupported       = "not yet supported for this identifier type"
	MsgUnrecognized       = "unrecognized identifier format"
)

func diagnostic(msg string) *Diagnostic {
	return &Diagnostic{Message: msg}
}

// IsDiagnostic reports whether err is (or wraps) a *Diagnostic.
func IsDiagnostic(err error) bool {
	var d *Diagnostic
	return errors.As(err, &d)
}

// Generic concatenates Prefix + identifier + Suffix verbatim.
//
// With an empty Prefix and Suffix the identifier is expected to already be a
// url, which lets a dataset that carries its own url column be scraped as is.
type Generic struct {
	Prefix string
	Suffix string
}

func (Generic) Name() string {
	return "generic"
}

func (g Generic) Formulate(identifier string) (string, error) {
	if identifier == "" {
		return "", diagnostic(MsgIdentifierRequired)
	}
	return g.Prefix + identifier + g.Suffix, nil
}

// Params configures special formulas, fields that a formula does not use are
// ignored.
type Params struct {
	// Congress is the numbered session used by congress-crs, 0 means the default.
	Congress int
	// BaseUrl overrides the site root of formulas that carry one.
	BaseUrl string
}

var ErrUnknownFormula = errors.New("unknown special formula")

type constructor struct {
	description string
	build       func(Params) Formula
}

// the set of special formulas is closed on purpose, every entry is tested in
// isolation in this package.
var registry = map[string]constructor{
	CongressBillName: {
		description: "congress.gov CRS bill summaries keyed by bill number (H.R. 1234, S 500)",
		build: func(p Params) Formula {
			return NewCongressBill(p)
		},
	},
}

// Lookup returns the special formula registered under name.
func Lookup(name string, params Params) (Formula, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownFormula, name, Names())
	}
	return c.build(params), nil
}

// Names lists the registered special formulas in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a one line description of a registered special formula.
func Describe(name string) (string, bool) {
	c, ok := registry[name]
	return c.description, ok
}

// CleanupOf returns the cleanup strings a formula asks for, if any.
func CleanupOf(f Formula) []string {
	c, ok := f.(Cleaner)
	if !ok {
		return nil
	}
	return slices.Clone(c.Cleanup())
}
