package linguist

// Counts tallies messages by translation state.
type Counts struct {
	Total      int `json:"total"`
	Finished   int `json:"finished"`
	Unfinished int `json:"unfinished"`
	Obsolete   int `json:"obsolete"`
}

func (c *Counts) add(m *Message) {
	c.Total++
	switch {
	case m.IsObsolete():
		c.Obsolete++
	case m.IsFinished():
		c.Finished++
	default:
		c.Unfinished++
	}
}

// Progress is the finished share of active messages, 0..1.
func (c Counts) Progress() float64 {
	active := c.Total - c.Obsolete
	if active == 0 {
		return 1
	}
	return float64(c.Finished) / float64(active)
}

type ContextStats struct {
	Name string `json:"name"`
	Counts
}

type Stats struct {
	Language string         `json:"language"`
	Counts   Counts         `json:"counts"`
	Contexts []ContextStats `json:"contexts"`
}

// Stats counts finished, unfinished and obsolete messages per context. A
// message marked finished but left empty counts as unfinished.
func (d *Document) Stats() Stats {
	s := Stats{Language: d.Language}
	for _, c := range d.Contexts {
		cs := ContextStats{Name: c.Name}
		for _, m := range c.Messages {
			cs.add(m)
			s.Counts.add(m)
		}
		s.Contexts = append(s.Contexts, cs)
	}
	return s
}
