package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"beetle-pipeline/internal/domain/entity"
)

type fakeRegistry struct {
	infoErr   error
	branchErr error
	calls     []string
	request   entity.UploadRequest
}

func (f *fakeRegistry) RepoInfo(_ context.Context, _ entity.RepoRef, revision string) error {
	f.calls = append(f.calls, "info:"+revision)
	return f.infoErr
}

func (f *fakeRegistry) CreateBranch(_ context.Context, _ entity.RepoRef, branch string) error {
	f.calls = append(f.calls, "branch:"+branch)
	return f.branchErr
}

func (f *fakeRegistry) UploadFolder(_ context.Context, _ entity.RepoRef, req entity.UploadRequest) (*entity.CommitInfo, error) {
	f.calls = append(f.calls, "upload:"+req.Revision)
	f.request = req
	return &entity.CommitInfo{OID: "abc", Files: 1}, nil
}

var uploadRepo = entity.RepoRef{ID: "org/beetles", Type: "dataset"}

func TestUploadService_MainBranch(t *testing.T) {
	reg := &fakeRegistry{}
	svc := NewUploadService(reg, zap.NewNop())

	info, err := svc.Run(context.Background(), UploadParams{
		FolderPath: t.TempDir(),
		Repo:       uploadRepo,
		PathInRepo: "images",
		Branch:     "main",
	})
	require.NoError(t, err)
	require.Equal(t, "abc", info.OID)
	require.Equal(t, []string{"upload:main"}, reg.calls)

	assert.Equal(t, "images", reg.request.PathInRepo)
	assert.Equal(t, "Upload folder using beetle-pipeline", reg.request.CommitMessage)
	assert.True(t, strings.HasPrefix(reg.request.CommitDescription, "beetle-pipeline run "))
}

func TestUploadService_ExistingBranch(t *testing.T) {
	reg := &fakeRegistry{}
	svc := NewUploadService(reg, zap.NewNop())

	_, err := svc.Run(context.Background(), UploadParams{
		FolderPath:    t.TempDir(),
		Repo:          uploadRepo,
		Branch:        "dev",
		CommitMessage: "crops",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"info:dev", "upload:dev"}, reg.calls)
	require.Equal(t, "crops", reg.request.CommitMessage)
}

func TestUploadService_CreatesMissingBranch(t *testing.T) {
	reg := &fakeRegistry{infoErr: errors.New("404 Not Found")}
	svc := NewUploadService(reg, zap.NewNop())

	_, err := svc.Run(context.Background(), UploadParams{FolderPath: t.TempDir(), Repo: uploadRepo, Branch: "dev"})
	require.NoError(t, err)
	require.Equal(t, []string{"info:dev", "branch:dev", "upload:dev"}, reg.calls)
}

func TestUploadService_BranchCreationFails(t *testing.T) {
	reg := &fakeRegistry{infoErr: errors.New("404"), branchErr: errors.New("403 Forbidden")}
	svc := NewUploadService(reg, zap.NewNop())

	_, err := svc.Run(context.Background(), UploadParams{FolderPath: t.TempDir(), Repo: uploadRepo, Branch: "dev"})
	require.Error(t, err)
	require.NotContains(t, reg.calls, "upload:dev")
}

func TestUploadService_Validation(t *testing.T) {
	svc := NewUploadService(&fakeRegistry{}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Run(ctx, UploadParams{FolderPath: t.TempDir(), Repo: entity.RepoRef{ID: "org/x", Type: "bucket"}})
	require.Error(t, err)

	_, err = svc.Run(ctx, UploadParams{FolderPath: filepath.Join(t.TempDir(), "absent"), Repo: uploadRepo})
	require.Error(t, err)
}
