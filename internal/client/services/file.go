package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/gostrapi/internal/client/client"
	"github.com/dmitrijs2005/gostrapi/internal/filex"
)

// FileService uploads files and reads upload metadata.
type FileService interface {
	List(ctx context.Context) ([]client.Record, error)
	Get(ctx context.Context, id string) (client.Record, error)
	Upload(ctx context.Context, files [][]byte, progress client.ProgressFunc) ([]client.Record, error)
	UploadPaths(ctx context.Context, paths []string, progress client.ProgressFunc) ([]client.Record, error)
}

type fileService struct {
	client client.Client
}

func NewFileService(c client.Client) FileService {
	return &fileService{client: c}
}

func (s *fileService) List(ctx context.Context) ([]client.Record, error) {
	list, err := s.client.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return list, nil
}

func (s *fileService) Get(ctx context.Context, id string) (client.Record, error) {
	if err := requireNonEmpty("id", id); err != nil {
		return nil, err
	}
	rec, err := s.client.File(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", id, err)
	}
	return rec, nil
}

func (s *fileService) Upload(ctx context.Context, files [][]byte, progress client.ProgressFunc) ([]client.Record, error) {
	return s.upload(ctx, client.NewUploadItems(files...), progress)
}

// UploadPaths reads paths and uploads them in order. When the content type
// cannot be sniffed the file keeps its own extension.
func (s *fileService) UploadPaths(ctx context.Context, paths []string, progress client.ProgressFunc) ([]client.Record, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files given", ErrInvalidInput)
	}
	data, err := filex.ReadAll(paths)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	items := make([]client.UploadItem, 0, len(data))
	for i, d := range data {
		item := client.NewUploadItem(d)
		if filepath.Ext(item.Name) == "" {
			item.Name += filepath.Ext(paths[i])
		}
		items = append(items, item)
	}
	return s.upload(ctx, items, progress)
}

func (s *fileService) upload(ctx context.Context, items []client.UploadItem, progress client.ProgressFunc) ([]client.Record, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, client.ErrEmptyUpload)
	}
	records, err := s.client.Upload(ctx, items, progress)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	return records, nil
}
