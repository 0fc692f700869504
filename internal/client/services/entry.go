package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
)

// EntryService runs CRUD operations on the entries of a backend model.
type EntryService interface {
	Create(ctx context.Context, model string, params client.Record) (client.Record, error)
	List(ctx context.Context, model string) ([]client.Record, error)
	Get(ctx context.Context, model, id string) (client.Record, error)
	Update(ctx context.Context, model, id string, params client.Record) (client.Record, error)
	Delete(ctx context.Context, model, id string) (client.Record, error)
}

type entryService struct {
	client client.Client
}

func NewEntryService(c client.Client) EntryService {
	return &entryService{client: c}
}

func requireNonEmpty(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, pairs[i])
		}
	}
	return nil
}

func (s *entryService) Create(ctx context.Context, model string, params client.Record) (client.Record, error) {
	if err := requireNonEmpty("model", model); err != nil {
		return nil, err
	}
	if params == nil {
		params = client.Record{}
	}
	rec, err := s.client.Create(ctx, model, params)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", model, err)
	}
	return rec, nil
}

func (s *entryService) List(ctx context.Context, model string) ([]client.Record, error) {
	if err := requireNonEmpty("model", model); err != nil {
		return nil, err
	}
	list, err := s.client.All(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", model, err)
	}
	return list, nil
}

func (s *entryService) Get(ctx context.Context, model, id string) (client.Record, error) {
	if err := requireNonEmpty("model", model, "id", id); err != nil {
		return nil, err
	}
	rec, err := s.client.Get(ctx, model, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", model, id, err)
	}
	return rec, nil
}

func (s *entryService) Update(ctx context.Context, model, id string, params client.Record) (client.Record, error) {
	if err := requireNonEmpty("model", model, "id", id); err != nil {
		return nil, err
	}
	if params == nil {
		params = client.Record{}
	}
	rec, err := s.client.Update(ctx, model, id, params)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", model, id, err)
	}
	return rec, nil
}

func (s *entryService) Delete(ctx context.Context, model, id string) (client.Record, error) {
	if err := requireNonEmpty("model", model, "id", id); err != nil {
		return nil, err
	}
	rec, err := s.client.Delete(ctx, model, id)
	if err != nil {
		return nil, fmt.Errorf("delete %s/%s: %w", model, id, err)
	}
	return rec, nil
}
