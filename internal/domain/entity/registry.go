package entity

import "fmt"

// RepoRef репозиторий на хостинге датасетов.
type RepoRef struct {
	ID   string // org/name
	Type string // dataset, model или space
}

// APIPath префикс REST API для репозитория.
func (r RepoRef) APIPath() string {
	return fmt.Sprintf("/api/%ss/%s", r.Type, r.ID)
}

// GitPrefix префикс git-адреса: у моделей его нет.
func (r RepoRef) GitPrefix() string {
	switch r.Type {
	case "dataset":
		return "datasets/"
	case "space":
		return "spaces/"
	}
	return ""
}

// Validate проверяет идентификатор и тип репозитория.
func (r RepoRef) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("repo id is required")
	}
	switch r.Type {
	case "dataset", "model", "space":
		return nil
	}
	return fmt.Errorf("unsupported repo type %q", r.Type)
}

// UploadRequest параметры загрузки каталога.
type UploadRequest struct {
	FolderPath        string
	PathInRepo        string
	Revision          string
	CommitMessage     string
	CommitDescription string
}

// CommitInfo результат коммита на хостинге.
type CommitInfo struct {
	URL      string
	OID      string
	Files    int // всего файлов в коммите
	LFSFiles int // из них через LFS
}
