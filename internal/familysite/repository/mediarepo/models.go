package mediarepo

import "errors"

var ErrNotFound = errors.New("media title not found")
