package utils

import (
	"fmt"
	"time"

	"Majanaaber/models"
)

// FormatMessageTime renders a message timestamp the way the chat UI shows it:
// clock time for today, "Yesterday HH:MM" for yesterday, "Jan 2 15:04" within
// the current year, full date otherwise.
func FormatMessageTime(t time.Time) string {
	return formatMessageTimeAt(t, time.Now())
}

func formatMessageTimeAt(t, now time.Time) string {
	t = t.Local()
	now = now.Local()

	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("15:04")
	}

	yesterday := now.AddDate(0, 0, -1)
	y3, m3, d3 := yesterday.Date()
	if y1 == y3 && m1 == m3 && d1 == d3 {
		return "Yesterday " + t.Format("15:04")
	}

	if y1 == y2 {
		return t.Format("Jan 2 15:04")
	}
	return t.Format("Jan 2, 2006")
}

// FormatFileSize renders a byte count for attachment labels.
func FormatFileSize(size int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case size >= gb:
		return fmt.Sprintf("%.1f GB", float64(size)/float64(gb))
	case size >= mb:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(mb))
	case size >= kb:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(kb))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// ReactionGroup is one emoji aggregated over a message's reactions.
type ReactionGroup struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []string `json:"user_ids"`
}

// GroupReactions aggregates reactions per emoji, preserving the order in
// which each emoji first appeared.
func GroupReactions(reactions []models.Reaction) []ReactionGroup {
	index := make(map[string]int)
	groups := make([]ReactionGroup, 0)

	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			index[r.Emoji] = len(groups)
			groups = append(groups, ReactionGroup{Emoji: r.Emoji})
			i = len(groups) - 1
		}
		groups[i].Count++
		groups[i].UserIDs = append(groups[i].UserIDs, r.UserID)
	}
	return groups
}
