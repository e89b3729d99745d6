package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`[ \t\r\f\v]*\n[ \t\r\f\v\n]*|[ \t\r\f\v]{2,}`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || c == '\n' {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// PlainText flattens an html fragment (for example the span between two
// boundaries of a page) to its text content. Block level breaks are kept as
// single newlines and runs of inline whitespace collapse to one space.
func PlainText(fragment string) (string, error) {
	// <br> carries no text node, so it is turned into one before parsing.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		breakTags.ReplaceAllString(fragment, "\n"),
	))
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	for _, n := range doc.Nodes {
		getTextRecursive(n, &buffer)
	}

	text := removeNonPrintable(buffer.String())
	text = innerWhitespace.ReplaceAllStringFunc(text, func(m string) string {
		if strings.Contains(m, "\n") {
			return "\n"
		}
		return " "
	})
	return strings.Trim(text, " \t\n"), nil
}

var breakTags = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</div>`)
