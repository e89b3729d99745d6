package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	testCases := []struct {
		fragment string
		expected string
	}{
		{fragment: "plain text", expected: "plain text"},
		{fragment: "<p>Shown Here:</p>  <p>Introduced in House</p>", expected: "Shown Here:\nIntroduced in House"},
		{fragment: "line one<br>line two<BR/>line three", expected: "line one\nline two\nline three"},
		{fragment: "<b>bold</b>   and <i>italic</i>", expected: "bold and italic"},
		{fragment: "a &amp; b", expected: "a & b"},
		{fragment: "<script>var x = 1;</script>kept", expected: "kept"},
		{fragment: "", expected: ""},
	}
	for _, test := range testCases {
		text, err := PlainText(test.fragment)
		require.NoError(t, err)
		require.Equal(t, test.expected, text, test.fragment)
	}
}
