package server

import (
	"errors"
	"net/http"

	"github.com/Leopold1975/familysite/internal/familysite/services/galleryservice"
	"github.com/go-chi/chi/v5"
)

// Menu shows the links the visitor's level allows; anonymous visitors see
// only level 0 links.
func (s *Server) Menu(w http.ResponseWriter, r *http.Request) {
	links := s.menu.Links(r.Context(), sessionFrom(r.Context()).CurrentLevel())

	s.render(w, r, http.StatusOK, "menu.html", "Menu", menuPage{Links: links})
}

func (s *Server) GalleryIndex(w http.ResponseWriter, r *http.Request) {
	galleries := s.galleries.ListGalleries(r.Context())

	s.render(w, r, http.StatusOK, "gallery_list.html", "Photos", galleryListPage{Galleries: galleries})
}

func (s *Server) GalleryRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
}

func (s *Server) GalleryShow(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	images, err := s.galleries.RenderGallery(r.Context(), slug)
	if err != nil {
		if errors.Is(err, galleryservice.ErrNotFound) {
			s.notFound(w, r)

			return
		}

		s.lg.Errorf("render gallery %s error: %s", slug, err.Error())
		s.renderError(w, r, http.StatusInternalServerError)

		return
	}

	s.render(w, r, http.StatusOK, "gallery_grid.html", slug, galleryPage{Slug: slug, Images: images})
}

func (s *Server) GalleryImage(w http.ResponseWriter, r *http.Request) {
	p, err := s.galleries.OriginalPath(chi.URLParam(r, "slug"), chi.URLParam(r, "file"))
	if err != nil {
		s.notFound(w, r)

		return
	}

	http.ServeFile(w, r, p)
}

func (s *Server) GalleryThumbnail(w http.ResponseWriter, r *http.Request) {
	p, err := s.galleries.ThumbnailPath(chi.URLParam(r, "file"))
	if err != nil {
		s.notFound(w, r)

		return
	}

	http.ServeFile(w, r, p)
}
