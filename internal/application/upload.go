package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"beetle-pipeline/internal/domain/entity"
	"beetle-pipeline/internal/domain/port"
)

const (
	defaultBranch        = "main"
	defaultCommitMessage = "Upload folder using beetle-pipeline"
)

// UploadParams параметры публикации каталога.
type UploadParams struct {
	FolderPath    string
	Repo          entity.RepoRef
	PathInRepo    string
	Branch        string
	CommitMessage string
}

type UploadService struct {
	registry port.DatasetRegistry
	log      *zap.Logger
}

// NewUploadService создаёт сервис загрузки каталога на хостинг датасетов.
func NewUploadService(registry port.DatasetRegistry, log *zap.Logger) *UploadService {
	return &UploadService{registry: registry, log: log}
}

// Run создаёт ветку при необходимости и загружает каталог одним коммитом.
func (s *UploadService) Run(ctx context.Context, p UploadParams) (*entity.CommitInfo, error) {
	if err := p.Repo.Validate(); err != nil {
		return nil, err
	}
	info, err := os.Stat(p.FolderPath)
	if err != nil {
		return nil, fmt.Errorf("folder %s: %w", p.FolderPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("folder %s is not a directory", p.FolderPath)
	}

	branch := p.Branch
	if branch == "" {
		branch = defaultBranch
	}

	if branch != defaultBranch {
		if err := s.ensureBranch(ctx, p.Repo, branch); err != nil {
			return nil, err
		}
	}

	runID := uuid.NewString()
	message := p.CommitMessage
	if message == "" {
		message = defaultCommitMessage
	}

	s.log.Info("uploading folder",
		zap.String("run_id", runID),
		zap.String("folder", p.FolderPath),
		zap.String("repo_id", p.Repo.ID),
		zap.String("repo_type", p.Repo.Type),
		zap.String("branch", branch))

	commit, err := s.registry.UploadFolder(ctx, p.Repo, entity.UploadRequest{
		FolderPath:        p.FolderPath,
		PathInRepo:        p.PathInRepo,
		Revision:          branch,
		CommitMessage:     message,
		CommitDescription: "beetle-pipeline run " + runID,
	})
	if err != nil {
		return nil, fmt.Errorf("upload folder: %w", err)
	}

	s.log.Info("upload complete",
		zap.String("run_id", runID),
		zap.String("commit", commit.OID),
		zap.String("url", commit.URL),
		zap.Int("files", commit.Files),
		zap.Int("lfs_files", commit.LFSFiles))
	return commit, nil
}

func (s *UploadService) ensureBranch(ctx context.Context, repo entity.RepoRef, branch string) error {
	s.log.Info("checking branch", zap.String("branch", branch))
	err := s.registry.RepoInfo(ctx, repo, branch)
	if err == nil {
		s.log.Info("branch exists", zap.String("branch", branch))
		return nil
	}
	s.log.Info("branch doesn't exist, creating it", zap.String("branch", branch), zap.Error(err))

	if err = s.registry.CreateBranch(ctx, repo, branch); err != nil {
		return fmt.Errorf("create branch %s: %w", branch, err)
	}
	s.log.Info("branch created", zap.String("branch", branch))
	return nil
}
