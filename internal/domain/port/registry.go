package port

import (
	"context"

	"beetle-pipeline/internal/domain/entity"
)

// DatasetRegistry интерфейс хостинга датасетов
type DatasetRegistry interface {
	// RepoInfo проверяет, что ревизия репозитория существует
	RepoInfo(ctx context.Context, repo entity.RepoRef, revision string) error

	// CreateBranch создаёт ветку; существующая ветка не считается ошибкой
	CreateBranch(ctx context.Context, repo entity.RepoRef, branch string) error

	// UploadFolder загружает каталог одним коммитом
	UploadFolder(ctx context.Context, repo entity.RepoRef, req entity.UploadRequest) (*entity.CommitInfo, error)
}
