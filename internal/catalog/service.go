package catalog

import (
	"context"

	"github.com/rs/zerolog"
)

type Service struct {
	Store Store
	Log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{Store: store, Log: log}
}

func (s *Service) Create(ctx context.Context, p *Product) error {
	if p.ID == "" || p.Name == "" || p.Category == "" || p.Price <= 0 {
		return ErrMissingFields
	}
	if err := s.Store.Insert(ctx, p); err != nil {
		return err
	}
	s.Log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.Store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, category string) ([]Product, error) {
	return s.Store.List(ctx, category)
}

func (s *Service) Update(ctx context.Context, p *Product) error {
	if p.Price <= 0 {
		return ErrMissingFields
	}
	return s.Store.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.Store.Count(ctx)
}
