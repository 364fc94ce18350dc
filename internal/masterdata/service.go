package masterdata

import (
	"context"
	"errors"
	"strings"
)

// Service handles master-data business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListParties(ctx context.Context, tenantID int64) ([]Party, error) {
	return s.repo.ListParties(ctx, tenantID)
}

func (s *Service) GetParty(ctx context.Context, tenantID, id int64) (*Party, error) {
	return s.repo.GetParty(ctx, tenantID, id)
}

func (s *Service) CreateParty(ctx context.Context, tenantID int64, p Party) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return 0, errors.New("party name required")
	}
	return s.repo.CreateParty(ctx, tenantID, p)
}

func (s *Service) UpdateParty(ctx context.Context, tenantID int64, p Party) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("party name required")
	}
	return s.repo.UpdateParty(ctx, tenantID, p)
}

func (s *Service) ListItems(ctx context.Context, tenantID int64) ([]Item, error) {
	return s.repo.ListItems(ctx, tenantID)
}

func (s *Service) GetItem(ctx context.Context, tenantID, id int64) (*Item, error) {
	return s.repo.GetItem(ctx, tenantID, id)
}

func (s *Service) CreateItem(ctx context.Context, tenantID int64, it Item) (int64, error) {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return 0, errors.New("item name required")
	}
	if it.Rate < 0 {
		return 0, errors.New("item rate cannot be negative")
	}
	return s.repo.CreateItem(ctx, tenantID, it)
}

func (s *Service) UpdateItem(ctx context.Context, tenantID int64, it Item) error {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return errors.New("item name required")
	}
	if it.Rate < 0 {
		return errors.New("item rate cannot be negative")
	}
	return s.repo.UpdateItem(ctx, tenantID, it)
}
