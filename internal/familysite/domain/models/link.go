package models

import "errors"

var ErrMalformedLink = errors.New("link row has neither title nor target")

type Link struct {
	Title         string `json:"title"`
	URL           string `json:"link"`
	Comment       string `json:"comment"`
	RequiredLevel int    `json:"level"`
}

// LinkRow is a siteslinks row as stored; every column may be NULL.
type LinkRow struct {
	Title   *string
	URL     *string
	Comment *string
	Level   *string
}

// NewLink normalizes a stored row. Missing fields get defaults; the level
// falls back to DefaultLevel when absent or unparsable.
func NewLink(row LinkRow) (Link, error) {
	title, url := deref(row.Title), deref(row.URL)
	if title == "" && url == "" {
		return Link{}, ErrMalformedLink
	}

	if title == "" {
		title = "Untitled"
	}

	if url == "" {
		url = "#"
	}

	lvl, _ := ParseLevel(deref(row.Level))

	return Link{
		Title:         title,
		URL:           url,
		Comment:       deref(row.Comment),
		RequiredLevel: lvl,
	}, nil
}

// VisibleTo reports whether a viewer with the given level may see the link.
func (l Link) VisibleTo(level int) bool {
	return level >= l.RequiredLevel
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
