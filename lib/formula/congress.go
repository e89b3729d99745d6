package formula

import (
	"fmt"
	"recordscrape/lib/textutil"
	"strconv"
	"strings"
)

const CongressBillName = "congress-crs"

const (
	defaultCongress        = 113
	defaultCongressBaseUrl = "https://beta.congress.gov"
)

// resolution codes are matched before bill codes since "sres" would
// otherwise read as a senate bill.
var resolutionCodes = []string{"hconres", "sconres", "hjres", "sjres", "hres", "sres"}

// CongressBill builds congress.gov bill pages out of bill numbers such as
// "H.R. 1234" or "S 500".
type CongressBill struct {
	Congress int
	BaseUrl  string
}

func NewCongressBill(p Params) CongressBill {
	c := CongressBill{Congress: p.Congress, BaseUrl: p.BaseUrl}
	if c.Congress <= 0 {
		c.Congress = defaultCongress
	}
	if c.BaseUrl == "" {
		c.BaseUrl = defaultCongressBaseUrl
	}
	c.BaseUrl = strings.TrimRight(c.BaseUrl, "/")
	return c
}

func (CongressBill) Name() string {
	return CongressBillName
}

func (c CongressBill) Formulate(identifier string) (string, error) {
	bill := textutil.NormalizeIdentifier(identifier)
	if bill == "" {
		return "", diagnostic(MsgIdentifierRequired)
	}
	for _, code := range resolutionCodes {
		if strings.HasPrefix(bill, code) {
			return "", diagnostic(MsgNotSupported)
		}
	}

	var chamber, number string
	switch {
	case strings.HasPrefix(bill, "s"):
		chamber, number = "senate-bill", bill[1:]
	case strings.HasPrefix(bill, "hr"):
		chamber, number = "house-bill", bill[2:]
	default:
		return "", diagnostic(MsgUnrecognized)
	}
	if !textutil.IsDigits(number) {
		return "", diagnostic(MsgUnrecognized)
	}
	number = strings.TrimLeft(number, "0")
	if number == "" {
		return "", diagnostic(MsgUnrecognized)
	}

	return fmt.Sprintf(
		"%s/bill/%s-congress/%s/%s",
		c.BaseUrl, ordinal(c.Congress), chamber, number,
	), nil
}

// CRS summaries come wrapped in paragraph and list markup.
func (CongressBill) Cleanup() []string {
	return []string{"<p>", "</li> <li>", "</p>"}
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
