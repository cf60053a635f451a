package items

import (
	"context"
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/validate"
)

type Service struct {
	repo      Repository
	validator *validate.Validator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validate.New()}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, name string) (Item, error) {
	if strings.TrimSpace(name) == "" {
		return Item{}, fmt.Errorf("%w: item name is required", httpx.ErrInvalidArgument)
	}
	return s.repo.Get(ctx, name)
}

func (s *Service) Create(ctx context.Context, form ItemForm) (Item, error) {
	form.ItemCode = strings.TrimSpace(form.ItemCode)
	form.ItemName = strings.TrimSpace(form.ItemName)
	if err := s.validator.Struct(form); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, form.doc())
}

func (s *Service) Update(ctx context.Context, name string, patch ItemPatch) (Item, error) {
	if strings.TrimSpace(name) == "" {
		return Item{}, fmt.Errorf("%w: item name is required", httpx.ErrInvalidArgument)
	}
	if err := s.validator.Struct(patch); err != nil {
		return Item{}, err
	}
	return s.repo.Update(ctx, name, patch.doc())
}

func (s *Service) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: item name is required", httpx.ErrInvalidArgument)
	}
	return s.repo.Delete(ctx, name)
}
