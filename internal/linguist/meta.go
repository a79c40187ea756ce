package linguist

import "encoding/json"

// MessageMeta is the part of a message that is not source or translation
// text. It is stored alongside a unit so the message can be rebuilt.
type MessageMeta struct {
	ID                string     `json:"id,omitempty"`
	Numerus           bool       `json:"numerus,omitempty"`
	Locations         []Location `json:"locations,omitempty"`
	Comment           string     `json:"comment,omitempty"`
	OldSource         string     `json:"oldsource,omitempty"`
	OldComment        string     `json:"oldcomment,omitempty"`
	ExtraComment      string     `json:"extracomment,omitempty"`
	TranslatorComment string     `json:"translatorcomment,omitempty"`
	Obsolete          bool       `json:"obsolete,omitempty"`
	Vanished          bool       `json:"vanished,omitempty"`
}

// HeaderMeta holds the TS element attributes other than language.
type HeaderMeta struct {
	Version        string `json:"version,omitempty"`
	SourceLanguage string `json:"sourcelanguage,omitempty"`
}

func (m *Message) Meta() MessageMeta {
	return MessageMeta{
		ID:                m.ID,
		Numerus:           m.Numerus,
		Locations:         m.Locations,
		Comment:           m.Comment,
		OldSource:         m.OldSource,
		OldComment:        m.OldComment,
		ExtraComment:      m.ExtraComment,
		TranslatorComment: m.TranslatorComment,
		Obsolete:          m.IsObsolete(),
		Vanished:          m.Translation.Type == Vanished,
	}
}

// ApplyMeta copies meta onto m. The translation is left alone.
func (m *Message) ApplyMeta(meta MessageMeta) {
	m.ID = meta.ID
	m.Numerus = meta.Numerus
	m.Locations = meta.Locations
	m.Comment = meta.Comment
	m.OldSource = meta.OldSource
	m.OldComment = meta.OldComment
	m.ExtraComment = meta.ExtraComment
	m.TranslatorComment = meta.TranslatorComment
}

// MarshalMeta encodes v as compact JSON, returning "" when every field is
// empty.
func MarshalMeta[T MessageMeta | HeaderMeta](v T) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "{}" {
		return "", nil
	}
	return string(b), nil
}

// UnmarshalMeta decodes raw into a meta value; "" yields the zero value.
func UnmarshalMeta[T MessageMeta | HeaderMeta](raw string) (T, error) {
	var v T
	if raw == "" {
		return v, nil
	}
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}
