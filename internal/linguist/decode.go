package linguist

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spkg/bom"
)

var (
	// ErrNotTS is returned when the root element is not <TS>.
	ErrNotTS = errors.New("linguist: root element is not TS")
	// ErrMalformed wraps XML syntax errors.
	ErrMalformed = errors.New("linguist: malformed document")
)

// Unmarshal parses a TS document from b.
func Unmarshal(b []byte) (*Document, error) {
	return Decode(bytes.NewReader(b))
}

// Decode parses a TS document from r. Unknown elements such as userdata and
// extra-* are skipped.
func Decode(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(bom.NewReader(r))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no root element", ErrMalformed)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "TS" {
			return nil, fmt.Errorf("%w: got <%s>", ErrNotTS, start.Name.Local)
		}
		doc, err := decodeTS(dec, start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return doc, nil
	}
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func decodeTS(dec *xml.Decoder, start xml.StartElement) (*Document, error) {
	doc := &Document{
		Version:        attr(start, "version"),
		Language:       attr(start, "language"),
		SourceLanguage: attr(start, "sourcelanguage"),
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "context" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			c, err := decodeContext(dec)
			if err != nil {
				return nil, err
			}
			doc.Contexts = append(doc.Contexts, c)
		case xml.EndElement:
			return doc, nil
		}
	}
}

func decodeContext(dec *xml.Decoder) (*Context, error) {
	c := &Context{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				if c.Name, err = readText(dec); err != nil {
					return nil, err
				}
			case "message":
				m, err := decodeMessage(dec, t)
				if err != nil {
					return nil, fmt.Errorf("context %q: %w", c.Name, err)
				}
				c.Messages = append(c.Messages, m)
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return c, nil
		}
	}
}

func decodeMessage(dec *xml.Decoder, start xml.StartElement) (*Message, error) {
	m := &Message{
		ID:      attr(start, "id"),
		Numerus: attr(start, "numerus") == "yes",
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var target *string
			switch t.Name.Local {
			case "location":
				m.Locations = append(m.Locations, Location{Filename: attr(t, "filename"), Line: attr(t, "line")})
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			case "translation":
				if m.Translation, err = decodeTranslation(dec, t); err != nil {
					return nil, err
				}
				continue
			case "source":
				target = &m.Source
			case "oldsource":
				target = &m.OldSource
			case "comment":
				target = &m.Comment
			case "oldcomment":
				target = &m.OldComment
			case "extracomment":
				target = &m.ExtraComment
			case "translatorcomment":
				target = &m.TranslatorComment
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			if *target, err = readText(dec); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return m, nil
		}
	}
}

func decodeTranslation(dec *xml.Decoder, start xml.StartElement) (Translation, error) {
	tr := Translation{Type: TranslationType(attr(start, "type"))}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return tr, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "numerusform":
				form, err := readText(dec)
				if err != nil {
					return tr, err
				}
				tr.NumerusForms = append(tr.NumerusForms, form)
			case "byte":
				r, err := byteValue(t)
				if err != nil {
					return tr, err
				}
				text.WriteRune(r)
				if err := dec.Skip(); err != nil {
					return tr, err
				}
			default:
				if err := dec.Skip(); err != nil {
					return tr, err
				}
			}
		case xml.EndElement:
			if tr.NumerusForms == nil {
				tr.Text = text.String()
			}
			return tr, nil
		}
	}
}

// readText collects the character content of the current element up to its
// end tag, expanding <byte value="xNN"/> escapes.
func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			if t.Name.Local == "byte" {
				r, err := byteValue(t)
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			}
			if err := dec.Skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

func byteValue(start xml.StartElement) (rune, error) {
	v := attr(start, "value")
	base := 10
	if strings.HasPrefix(v, "x") {
		v, base = v[1:], 16
	}
	n, err := strconv.ParseUint(v, base, 32)
	if err != nil {
		return 0, fmt.Errorf("bad byte value %q: %w", attr(start, "value"), err)
	}
	return rune(n), nil
}
