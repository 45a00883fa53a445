package authservice

import "github.com/Leopold1975/familysite/internal/familysite/domain/models"

type RegisterRequest struct {
	Username string
	Password string
	// Level is whatever the registration form sent; it is clamped before use.
	Level   string
	Profile models.Profile
}
