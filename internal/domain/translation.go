package domain

import "time"

// Translation statuses. Final and Unfinished mirror the TS translation type;
// Machine marks LLM output that still needs review.
const (
	StatusFinal      = "final"
	StatusUnfinished = "unfinished"
	StatusMachine    = "machine"
	StatusObsolete   = "obsolete"
)

type Translation struct {
	ID         int64     `json:"id"`
	UnitID     int64     `json:"unit_id"`
	Locale     string    `json:"locale"`
	Text       string    `json:"text"`
	Status     string    `json:"status"`
	Provider   string    `json:"provider"`
	Confidence *float64  `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Done reports whether t needs no further translation work.
func (t *Translation) Done() bool {
	return t != nil && t.Text != "" && (t.Status == StatusFinal || t.Status == StatusObsolete)
}

type CacheEntry struct {
	ID          int64     `json:"id"`
	SourceText  string    `json:"source_text"`
	SrcLang     string    `json:"src_lang"`
	TgtLang     string    `json:"tgt_lang"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}
