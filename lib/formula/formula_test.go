package formula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneric(t *testing.T) {
	f := Generic{
		Prefix: "http://www.ntsb.gov/aviationquery/brief.aspx?ev_id=",
		Suffix: "&key=1",
	}

	for i := 0; i < 3; i++ {
		url, err := f.Formulate("20140408X84430")
		require.NoError(t, err)
		require.Equal(t, "http://www.ntsb.gov/aviationquery/brief.aspx?ev_id=20140408X84430&key=1", url)
	}

	url, err := Generic{Prefix: "https://example.com/r/"}.Formulate(" a b ")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/r/ a b ", url)

	_, err = f.Formulate("")
	require.True(t, IsDiagnostic(err))
	require.Equal(t, MsgIdentifierRequired, err.Error())
}

func TestGenericPassthrough(t *testing.T) {
	url, err := Generic{}.Formulate("https://example.com/page/7")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/page/7", url)
}

func TestCongressBill(t *testing.T) {
	f := NewCongressBill(Params{})

	testCases := []struct {
		identifier string
		url        string
		diagnostic string
	}{
		{identifier: "H.R. 1234", url: "https://beta.congress.gov/bill/113th-congress/house-bill/1234"},
		{identifier: "s 500", url: "https://beta.congress.gov/bill/113th-congress/senate-bill/500"},
		{identifier: "S.12", url: "https://beta.congress.gov/bill/113th-congress/senate-bill/12"},
		{identifier: "hr0042", url: "https://beta.congress.gov/bill/113th-congress/house-bill/42"},
		{identifier: "", diagnostic: MsgIdentifierRequired},
		{identifier: " . ", diagnostic: MsgIdentifierRequired},
		{identifier: "hres12", diagnostic: MsgNotSupported},
		{identifier: "S. Res. 5", diagnostic: MsgNotSupported},
		{identifier: "H.J.Res. 3", diagnostic: MsgNotSupported},
		{identifier: "S.Con.Res. 9", diagnostic: MsgNotSupported},
		{identifier: "xz99", diagnostic: MsgUnrecognized},
		{identifier: "hr", diagnostic: MsgUnrecognized},
		{identifier: "s", diagnostic: MsgUnrecognized},
		{identifier: "sabc", diagnostic: MsgUnrecognized},
		{identifier: "h1234", diagnostic: MsgUnrecognized},
		{identifier: "hr000", diagnostic: MsgUnrecognized},
		{identifier: "hr12a", diagnostic: MsgUnrecognized},
	}

	for _, test := range testCases {
		url, err := f.Formulate(test.identifier)
		if test.diagnostic != "" {
			var d *Diagnostic
			require.True(t, errors.As(err, &d), test.identifier)
			require.Equal(t, test.diagnostic, d.Message, test.identifier)
			require.Empty(t, url)
			continue
		}
		require.NoError(t, err, test.identifier)
		require.Equal(t, test.url, url, test.identifier)
	}
}

func TestCongressBillParams(t *testing.T) {
	f := NewCongressBill(Params{Congress: 114, BaseUrl: "https://www.congress.gov/"})
	url, err := f.Formulate("H.R. 1")
	require.NoError(t, err)
	require.Equal(t, "https://www.congress.gov/bill/114th-congress/house-bill/1", url)
}

func TestOrdinal(t *testing.T) {
	testCases := map[int]string{
		1:   "1st",
		2:   "2nd",
		3:   "3rd",
		4:   "4th",
		11:  "11th",
		12:  "12th",
		13:  "13th",
		101: "101st",
		111: "111th",
		112: "112th",
		113: "113th",
		122: "122nd",
	}
	for n, expected := range testCases {
		require.Equal(t, expected, ordinal(n))
	}
}

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{CongressBillName}, Names())

	f, err := Lookup(CongressBillName, Params{Congress: 115})
	require.NoError(t, err)
	require.Equal(t, CongressBillName, f.Name())
	require.Equal(t, []string{"<p>", "</li> <li>", "</p>"}, CleanupOf(f))

	desc, ok := Describe(CongressBillName)
	require.True(t, ok)
	require.NotEmpty(t, desc)

	_, err = Lookup("bogus", Params{})
	require.ErrorIs(t, err, ErrUnknownFormula)

	require.Nil(t, CleanupOf(Generic{}))
}
