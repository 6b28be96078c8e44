package csv_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	pcsv "greencart/internal/parser/csv"
)

func quietParser(opt pcsv.Options) (*pcsv.Parser, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	opt.Log = l
	return pcsv.NewParser(opt), hook
}

func TestParse_Basic(t *testing.T) {
	p, _ := quietParser(pcsv.Options{TrimSpace: true})
	in := "order_id,price,freight_value\n o1 ,21.33,15.10\no2,,8\n"

	tbl, skipped, err := p.Parse("olist_order_items_dataset", strings.NewReader(in))
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Equal(t, "olist_order_items_dataset", tbl.Name)
	require.Equal(t, []string{"order_id", "price", "freight_value"}, tbl.Columns)
	require.Equal(t, [][]any{{"o1", "21.33", "15.10"}, {"o2", nil, "8"}}, tbl.Rows)
}

func TestParse_SkipsMalformedRows(t *testing.T) {
	p, hook := quietParser(pcsv.Options{})
	in := "a,b\n1,2\n1,2,3\n\"bad\"quote,x\n4,5\n"

	tbl, skipped, err := p.Parse("t", strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, skipped)
	require.Equal(t, [][]any{{"1", "2"}, {"4", "5"}}, tbl.Rows)
	require.NotEmpty(t, hook.AllEntries())
	require.Equal(t, 2, hook.LastEntry().Data["skipped"])
}

func TestParse_StripsUTF8BOM(t *testing.T) {
	p, _ := quietParser(pcsv.Options{})
	tbl, _, err := p.Parse("t", strings.NewReader("\ufeffcustomer_id,customer_state\nc1,SP\n"))
	require.NoError(t, err)
	require.Equal(t, "customer_id", tbl.Columns[0])
}

func TestParse_DecodesUTF16WithBOM(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFE}) // UTF-16LE BOM
	for _, r := range "id,city\n1,são paulo\n" {
		buf.WriteByte(byte(r))
		buf.WriteByte(byte(r >> 8))
	}
	p, _ := quietParser(pcsv.Options{})
	tbl, _, err := p.Parse("t", &buf)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "city"}, tbl.Columns)
	require.Equal(t, "são paulo", tbl.Value(0, "city"))
}

func TestParse_HeaderMapAndDelimiter(t *testing.T) {
	p, _ := quietParser(pcsv.Options{Comma: ';', HeaderMap: map[string]string{"ID": "order_id"}})
	tbl, _, err := p.Parse("t", strings.NewReader("ID;status\nx;delivered\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"order_id", "status"}, tbl.Columns)
}

func TestParse_Empty(t *testing.T) {
	p, _ := quietParser(pcsv.Options{})
	_, _, err := p.Parse("t", strings.NewReader(""))
	require.ErrorIs(t, err, pcsv.ErrEmpty)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParse_ReaderError(t *testing.T) {
	p, _ := quietParser(pcsv.Options{})
	_, _, err := p.Parse("t", io.MultiReader(strings.NewReader("a\n1\n"), failingReader{}))
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk gone")
}
