package extract

import (
	"recordscrape/lib/textutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func literal(start, end string, alternates ...string) Spec {
	spec := Spec{
		Start:         textutil.Escape(start),
		End:           textutil.Escape(end),
		AllowNewlines: true,
	}
	for _, a := range alternates {
		spec.Alternates = append(spec.Alternates, textutil.Escape(a))
	}
	return spec
}

func TestExtract(t *testing.T) {
	text, err := Extract("AAA<start>HELLO<end>BBB", literal("<start>", "<end>"))
	require.NoError(t, err)
	require.Equal(t, "HELLO", text)
}

func TestExtractAlternate(t *testing.T) {
	text, err := Extract("AAA<start>HELLO<end2>BBB", literal("<start>", "<end>", "<end1>", "<end2>"))
	require.NoError(t, err)
	require.Equal(t, "HELLO", text)
}

func TestExtractFirstEndWins(t *testing.T) {
	// the primary end is preferred even when an alternate appears earlier
	page := "<s>one<alt>two<e>three<e>"
	text, err := Extract(page, literal("<s>", "<e>", "<alt>"))
	require.NoError(t, err)
	require.Equal(t, "one<alt>two", text)
}

func TestExtractNotFound(t *testing.T) {
	testCases := []struct {
		page string
		spec Spec
	}{
		{page: "AAA<start>HELLO BBB", spec: literal("<start>", "<end>", "<end2>")},
		{page: "AAA HELLO<end>BBB", spec: literal("<start>", "<end>")},
		{page: "<end>HELLO<start>", spec: literal("<start>", "<end>")},
		{page: "", spec: literal("<start>", "<end>")},
	}
	for _, test := range testCases {
		_, err := Extract(test.page, test.spec)
		require.ErrorIs(t, err, ErrBoundariesNotFound, test.page)
	}
	require.Equal(t, "could not locate the expected boundaries for this record", ErrBoundariesNotFound.Error())
}

func TestExtractNewlines(t *testing.T) {
	page := "<div id=\"narr_text\"> <br>first line\nsecond line</div>\n<HR>"

	spec := literal(`<div id="narr_text"> <br>`, "</div>")
	text, err := Extract(page, spec)
	require.NoError(t, err)
	require.Equal(t, "first line\nsecond line", text)

	spec.AllowNewlines = false
	_, err = Extract(page, spec)
	require.ErrorIs(t, err, ErrBoundariesNotFound)
}

func TestExtractFirstOccurrence(t *testing.T) {
	page := "x<b>first</b> y <b>second</b>"
	text, err := Extract(page, literal("<b>", "</b>"))
	require.NoError(t, err)
	require.Equal(t, "first", text)
}

func TestExtractPatterns(t *testing.T) {
	page := "to prepare this aircraft accident report.\nThe airplane was parked.\nIndex for Jan2014"
	text, err := Extract(page, Spec{
		Start:         `to\sprepare\sthis\saircraft\saccident\sreport\.`,
		End:           `Index\sfor`,
		AllowNewlines: true,
		Trim:          true,
	})
	require.NoError(t, err)
	require.Equal(t, "The airplane was parked.", text)
}

func TestExtractPatternsWithGroups(t *testing.T) {
	testCases := []struct {
		name     string
		spec     Spec
		page     string
		expected string
	}{
		{
			name:     "group in start",
			spec:     Spec{Start: `(Narrative|Summary):\s+`, End: "<end>"},
			page:     "Narrative:  HELLO<end>",
			expected: "HELLO",
		},
		{
			name:     "nested groups in start",
			spec:     Spec{Start: `((Final|Factual) (report)):\s*`, End: `(\.|!)`},
			page:     "Factual report: the pilot landed.",
			expected: "the pilot landed",
		},
		{
			name: "group in alternate end",
			spec: Spec{
				Start:      `(A|B)>`,
				End:        "<missing>",
				Alternates: []string{`(</p>|</div>)`},
			},
			page:     "B>text</div>",
			expected: "text",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			text, err := Extract(test.page, test.spec)
			require.NoError(t, err)
			require.Equal(t, test.expected, text)
		})
	}
}

func TestExtractCleanup(t *testing.T) {
	page := `<h3>Summary</span></h3><p>Shown Here:</li> <li>Introduced.</p>  </p></div>`
	spec := literal("</span></h3>", "</p></div>", "</div>")
	spec.Cleanup = []string{"<p>", "</li> <li>", "</p>"}
	spec.Trim = true

	text, err := Extract(page, spec)
	require.NoError(t, err)
	require.Equal(t, "Shown Here:Introduced.", text)
}

func TestExtractStripTags(t *testing.T) {
	page := `<td class="blueTen"><p>Employee #1 was <b>injured</b>.</p></td>`
	spec := literal(`<td class="blueTen">`, "</td>")
	spec.StripTags = true

	text, err := Extract(page, spec)
	require.NoError(t, err)
	require.Equal(t, "Employee #1 was injured.", text)
}

func TestCompileErrors(t *testing.T) {
	_, err := Spec{End: "x"}.Compile()
	require.Error(t, err)

	_, err = Spec{Start: "x"}.Compile()
	require.Error(t, err)

	_, err = Spec{Start: "x", End: "y", Alternates: []string{""}}.Compile()
	require.Error(t, err)

	_, err = Spec{Start: "(", End: "y"}.Compile()
	require.Error(t, err)
}

func TestExtractorReuse(t *testing.T) {
	e, err := literal("[", "]").Compile()
	require.NoError(t, err)

	for _, test := range []struct{ page, expected string }{
		{page: "a[1]", expected: "1"},
		{page: "[two] [three]", expected: "two"},
	} {
		text, err := e.Extract(test.page)
		require.NoError(t, err)
		require.Equal(t, test.expected, text)
	}
}
