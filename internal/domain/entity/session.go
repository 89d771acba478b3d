package entity

import "time"

// Session one viewer's transient state: the manual shopping list and the
// items they flagged as running low. Never persisted to the sheet.
type Session struct {
	ID         string          `json:"id"`
	ManualList []string        `json:"manual_list"`
	LowFlags   map[string]bool `json:"low_flags"` // kalit: kichik harfli nom
	CreatedAt  time.Time       `json:"created_at"`
	LastUsed   time.Time       `json:"last_used"`
}

// Clone nusxa (map va slice ulashilmaydi)
func (s Session) Clone() Session {
	out := s
	out.ManualList = append([]string(nil), s.ManualList...)
	out.LowFlags = make(map[string]bool, len(s.LowFlags))
	for k, v := range s.LowFlags {
		out.LowFlags[k] = v
	}
	return out
}
