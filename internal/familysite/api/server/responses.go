package server

import "github.com/Leopold1975/familysite/internal/familysite/domain/models"

type CheckResponse struct {
	LoggedIn bool `json:"logged_in"` //nolint:tagliatelle
}

type UsernameResponse struct {
	Username *string `json:"username"`
}

type AuthRequiredResponse struct {
	Err      string `json:"error"`
	LoggedIn bool   `json:"logged_in"` //nolint:tagliatelle
}

type MenuResponse struct {
	Links []models.Link `json:"links"`
}

type errorPage struct {
	Code int
	Text string
}

type menuPage struct {
	Links []models.Link
}

type galleryListPage struct {
	Galleries []models.Gallery
}

type galleryPage struct {
	Slug   string
	Images []models.Image
}

type registerPage struct {
	Username string
	Profile  models.Profile
}
