package menuservice

import (
	"context"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/pkg/logger"
)

type Repository interface {
	GetLinks(context.Context) ([]models.Link, error)
}

type MenuService struct {
	linkRepo Repository
	lg       logger.Logger
}

func New(linkRepo Repository, lg logger.Logger) *MenuService {
	return &MenuService{
		linkRepo: linkRepo,
		lg:       lg,
	}
}

// Links returns, in stored order, the links a viewer with viewerLevel may
// see. A failing fetch is logged and yields no links so the menu page still
// renders.
func (ms *MenuService) Links(ctx context.Context, viewerLevel int) []models.Link {
	all, err := ms.linkRepo.GetLinks(ctx)
	if err != nil {
		ms.lg.Errorf("fetch menu links error: %s", err.Error())

		return nil
	}

	visible := make([]models.Link, 0, len(all))

	for _, l := range all {
		if l.VisibleTo(viewerLevel) {
			visible = append(visible, l)
		}
	}

	return visible
}
