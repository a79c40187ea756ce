package linguist

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Marshal renders d in the layout lupdate writes.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes d to w using lupdate's element order, indentation and
// entity escaping, so that unchanged files survive a decode/encode cycle.
func Encode(w io.Writer, d *Document) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<!DOCTYPE TS>\n<TS")
	if d.Version != "" {
		writeAttr(bw, "version", d.Version)
	}
	if d.Language != "" {
		writeAttr(bw, "language", d.Language)
	}
	if d.SourceLanguage != "" {
		writeAttr(bw, "sourcelanguage", d.SourceLanguage)
	}
	bw.WriteString(">\n")
	for _, c := range d.Contexts {
		bw.WriteString("<context>\n")
		writeElement(bw, "    ", "name", c.Name)
		for _, m := range c.Messages {
			encodeMessage(bw, m)
		}
		bw.WriteString("</context>\n")
	}
	bw.WriteString("</TS>\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("linguist: write: %w", err)
	}
	return nil
}

func encodeMessage(bw *bufio.Writer, m *Message) {
	bw.WriteString("    <message")
	if m.ID != "" {
		writeAttr(bw, "id", m.ID)
	}
	if m.Numerus {
		writeAttr(bw, "numerus", "yes")
	}
	bw.WriteString(">\n")
	for _, loc := range m.Locations {
		bw.WriteString("        <location")
		if loc.Filename != "" {
			writeAttr(bw, "filename", loc.Filename)
		}
		if loc.Line != "" {
			writeAttr(bw, "line", loc.Line)
		}
		bw.WriteString("/>\n")
	}
	const indent = "        "
	writeElement(bw, indent, "source", m.Source)
	optional := []struct{ name, value string }{
		{"oldsource", m.OldSource},
		{"comment", m.Comment},
		{"oldcomment", m.OldComment},
		{"extracomment", m.ExtraComment},
		{"translatorcomment", m.TranslatorComment},
	}
	for _, o := range optional {
		if o.value != "" {
			writeElement(bw, indent, o.name, o.value)
		}
	}
	encodeTranslation(bw, m)
	bw.WriteString("    </message>\n")
}

func encodeTranslation(bw *bufio.Writer, m *Message) {
	bw.WriteString("        <translation")
	if m.Translation.Type != Finished {
		writeAttr(bw, "type", string(m.Translation.Type))
	}
	bw.WriteString(">")
	if m.Numerus {
		bw.WriteString("\n")
		for _, f := range m.Translation.NumerusForms {
			writeElement(bw, "            ", "numerusform", f)
		}
		bw.WriteString("        </translation>\n")
		return
	}
	bw.WriteString(protect(m.Translation.Text))
	bw.WriteString("</translation>\n")
}

func writeElement(bw *bufio.Writer, indent, name, text string) {
	bw.WriteString(indent)
	bw.WriteString("<" + name + ">")
	bw.WriteString(protect(text))
	bw.WriteString("</" + name + ">\n")
}

func writeAttr(bw *bufio.Writer, name, value string) {
	bw.WriteString(" " + name + "=\"")
	bw.WriteString(protect(value))
	bw.WriteString("\"")
}

// protect escapes text the way Qt's TS writer does: the five XML entities by
// name, control characters other than tab and newline as <byte/> elements. A raw CR
// would come back as a newline.
func protect(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/5)
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("&quot;")
		case '&':
			b.WriteString("&amp;")
		case '>':
			b.WriteString("&gt;")
		case '<':
			b.WriteString("&lt;")
		case '\'':
			b.WriteString("&apos;")
		default:
			if r < 0x20 && r != '\n' && r != '\t' {
				fmt.Fprintf(&b, "<byte value=\"x%x\"/>", r)
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
