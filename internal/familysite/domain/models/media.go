package models

// MediaTitle is a row of the media titles table edited by the path matcher.
type MediaTitle struct {
	ID       int64
	Title    string
	Episodes string
}

// MediaPath is a known file on disk that a title can be matched against.
type MediaPath struct {
	ID       int64
	FilePath string
}
