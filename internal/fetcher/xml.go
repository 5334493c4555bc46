package fetcher

import (
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeXMLElements collects every element whose namespace-local name equals
// elementName, decoded into T. Matching ignores namespace prefixes entirely,
// which is required for EDGAR documents: the same vocabulary appears with and
// without namespace qualification depending on the filer's software.
func DecodeXMLElements[T any](r io.Reader, elementName string) ([]T, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var out []T
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "xml: read token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elementName {
			continue
		}

		var item T
		if err := decoder.DecodeElement(&item, &se); err != nil {
			return nil, eris.Wrap(err, "xml: decode element")
		}
		out = append(out, item)
	}
}
