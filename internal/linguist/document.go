// Package linguist reads and writes Qt Linguist translation source files (.ts).
//
// A Document mirrors the TS element tree closely enough that decoding a file
// written by lupdate and encoding it again yields the same bytes.
package linguist

import "strings"

// TranslationType is the value of the type attribute on a translation element.
type TranslationType string

const (
	Finished   TranslationType = ""
	Unfinished TranslationType = "unfinished"
	Obsolete   TranslationType = "obsolete"
	// Vanished is what Qt 5.6+ writes instead of obsolete.
	Vanished TranslationType = "vanished"
)

// NumerusSeparator joins numerus forms when they have to travel as one string.
const NumerusSeparator = "\x1e"

type Document struct {
	Version        string
	Language       string
	SourceLanguage string
	Contexts       []*Context
}

type Context struct {
	Name     string
	Messages []*Message
}

type Location struct {
	Filename string `json:"filename,omitempty"`
	Line     string `json:"line,omitempty"`
}

type Translation struct {
	Type         TranslationType
	Text         string
	NumerusForms []string
}

// Message is one translatable string. Comment is the disambiguation comment
// (the second argument of tr()), ExtraComment the developer note (//:).
type Message struct {
	ID                string
	Numerus           bool
	Locations         []Location
	Source            string
	OldSource         string
	Comment           string
	OldComment        string
	ExtraComment      string
	TranslatorComment string
	Translation       Translation
}

// Key identifies a message for lookup purposes.
type Key struct {
	Context string
	Source  string
	Comment string
}

// KeySeparator joins the parts of a Key in its string form.
const KeySeparator = "\x04"

// String joins context, source and, when present, comment. The same text in
// two contexts, or with two comments, yields two distinct strings.
func (k Key) String() string {
	s := k.Context + KeySeparator + k.Source
	if k.Comment != "" {
		s += KeySeparator + k.Comment
	}
	return s
}

func (m *Message) Key(context string) Key {
	return Key{Context: context, Source: m.Source, Comment: m.Comment}
}

// IsObsolete reports whether the message is kept only for reference.
func (m *Message) IsObsolete() bool {
	return m.Translation.Type == Obsolete || m.Translation.Type == Vanished
}

// IsActive reports whether the message belongs in a runtime lookup table.
func (m *Message) IsActive() bool { return !m.IsObsolete() }

// IsFinished reports whether a translator marked the message done and it
// actually carries text.
func (m *Message) IsFinished() bool {
	if m.Translation.Type != Finished {
		return false
	}
	if m.Numerus {
		for _, f := range m.Translation.NumerusForms {
			if f != "" {
				return true
			}
		}
		return false
	}
	return m.Translation.Text != ""
}

// Joined returns the translation as a single string. Numerus forms are joined
// with NumerusSeparator.
func (t Translation) Joined() string {
	if len(t.NumerusForms) > 0 {
		return strings.Join(t.NumerusForms, NumerusSeparator)
	}
	return t.Text
}

// SetJoined is the inverse of Joined for numerus messages.
func (m *Message) SetJoined(text string) {
	if m.Numerus {
		m.Translation.NumerusForms = strings.Split(text, NumerusSeparator)
		m.Translation.Text = ""
		return
	}
	m.Translation.Text = text
}

// Context returns the context with the given name, or nil.
func (d *Document) Context(name string) *Context {
	for _, c := range d.Contexts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Walk calls fn for every message in document order until fn returns false.
func (d *Document) Walk(fn func(c *Context, m *Message) bool) {
	for _, c := range d.Contexts {
		for _, m := range c.Messages {
			if !fn(c, m) {
				return
			}
		}
	}
}

// Find returns the first message matching k, including obsolete ones.
func (d *Document) Find(k Key) *Message {
	c := d.Context(k.Context)
	if c == nil {
		return nil
	}
	for _, m := range c.Messages {
		if m.Source == k.Source && m.Comment == k.Comment {
			return m
		}
	}
	return nil
}

// Len returns the number of messages in the document.
func (d *Document) Len() int {
	n := 0
	for _, c := range d.Contexts {
		n += len(c.Messages)
	}
	return n
}
