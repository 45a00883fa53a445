package models

type Gallery struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Folder      string `json:"folder"`
	Description string `json:"description"`
}

// Image is one entry of a rendered gallery.
type Image struct {
	File     string `json:"file"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"` //nolint:tagliatelle
}
