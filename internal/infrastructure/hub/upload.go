package hub

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"beetle-pipeline/internal/domain/entity"
)

const (
	modeRegular = "regular"
	modeLFS     = "lfs"

	sampleSize  = 512
	batchSize   = 256
	lfsMimeType = "application/vnd.git-lfs+json"
)

// ErrEmptyFolder возвращается, когда в каталоге нет файлов для загрузки.
var ErrEmptyFolder = errors.New("folder has no files to upload")

type localFile struct {
	absPath  string
	repoPath string
	size     int64
	sample   []byte
	mode     string
	oid      string
}

type preuploadFile struct {
	Path   string `json:"path"`
	Sample string `json:"sample"`
	Size   int64  `json:"size"`
}

type preuploadRequest struct {
	Files []preuploadFile `json:"files"`
}

type preuploadResponse struct {
	Files []struct {
		Path         string `json:"path"`
		UploadMode   string `json:"uploadMode"`
		ShouldIgnore bool   `json:"shouldIgnore"`
	} `json:"files"`
}

type lfsObject struct {
	OID  string `json:"oid"`
	Size int64  `json:"size"`
}

type lfsRef struct {
	Name string `json:"name"`
}

type lfsBatchRequest struct {
	Operation string      `json:"operation"`
	Transfers []string    `json:"transfers"`
	Objects   []lfsObject `json:"objects"`
	HashAlgo  string      `json:"hash_algo"`
	Ref       *lfsRef     `json:"ref,omitempty"`
}

type lfsAction struct {
	Href   string            `json:"href"`
	Header map[string]string `json:"header"`
}

type lfsBatchObject struct {
	OID     string `json:"oid"`
	Size    int64  `json:"size"`
	Actions *struct {
		Upload *lfsAction `json:"upload"`
		Verify *lfsAction `json:"verify"`
	} `json:"actions"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type lfsBatchResponse struct {
	Objects []lfsBatchObject `json:"objects"`
}

type completedPart struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

type commitLine struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type commitResponse struct {
	CommitURL string `json:"commitUrl"`
	CommitOID string `json:"commitOid"`
}

// UploadFolder загружает каталог одним коммитом: предварительная проверка
// режима файлов, загрузка LFS-объектов, затем коммит в формате NDJSON.
func (c *Client) UploadFolder(ctx context.Context, repo entity.RepoRef, req entity.UploadRequest) (*entity.CommitInfo, error) {
	files, err := collectFiles(req.FolderPath, req.PathInRepo)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", req.FolderPath, ErrEmptyFolder)
	}

	if files, err = c.preupload(ctx, repo, req.Revision, files); err != nil {
		return nil, err
	}

	var lfs []*localFile
	for _, f := range files {
		if f.mode == modeLFS {
			lfs = append(lfs, f)
		}
	}
	if err := c.uploadLFS(ctx, repo, req.Revision, lfs); err != nil {
		return nil, err
	}

	info, err := c.commit(ctx, repo, req, files)
	if err != nil {
		return nil, err
	}
	info.Files = len(files)
	info.LFSFiles = len(lfs)
	return info, nil
}

// collectFiles обходит каталог, пропуская служебные каталоги git и кэша.
func collectFiles(folder, pathInRepo string) ([]*localFile, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", folder)
	}

	prefix := strings.Trim(path.Clean("/"+filepath.ToSlash(pathInRepo)), "/")

	var files []*localFile
	err = filepath.WalkDir(folder, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(folder, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || rel == ".cache/huggingface" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		sample, err := readSample(p)
		if err != nil {
			return err
		}

		files = append(files, &localFile{
			absPath:  p,
			repoPath: path.Join(prefix, rel),
			size:     fi.Size(),
			sample:   sample,
			mode:     modeRegular,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk folder: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].repoPath < files[j].repoPath })
	return files, nil
}

func readSample(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	buf := make([]byte, sampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return buf[:n], nil
}

// preupload узнаёт у хаба режим загрузки каждого файла и отбрасывает игнорируемые.
func (c *Client) preupload(ctx context.Context, repo entity.RepoRef, revision string, files []*localFile) ([]*localFile, error) {
	byPath := make(map[string]*localFile, len(files))
	ignored := make(map[string]bool)

	for start := 0; start < len(files); start += batchSize {
		end := min(start+batchSize, len(files))

		body := preuploadRequest{Files: make([]preuploadFile, 0, end-start)}
		for _, f := range files[start:end] {
			byPath[f.repoPath] = f
			body.Files = append(body.Files, preuploadFile{
				Path:   f.repoPath,
				Sample: base64.StdEncoding.EncodeToString(f.sample),
				Size:   f.size,
			})
		}

		var result preuploadResponse
		resp, err := c.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&result).
			Post(repo.APIPath() + "/preupload/" + url.PathEscape(revision))
		if err != nil {
			return nil, fmt.Errorf("couldn't connect with hub: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("preupload: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
		}

		for _, r := range result.Files {
			f, ok := byPath[r.Path]
			if !ok {
				continue
			}
			if r.ShouldIgnore {
				ignored[r.Path] = true
			}
			if r.UploadMode == modeLFS {
				f.mode = modeLFS
			}
		}
	}

	kept := files[:0]
	for _, f := range files {
		if !ignored[f.repoPath] {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

// uploadLFS загружает объекты через batch API git-lfs.
func (c *Client) uploadLFS(ctx context.Context, repo entity.RepoRef, revision string, files []*localFile) error {
	for _, f := range files {
		oid, err := sha256File(f.absPath)
		if err != nil {
			return err
		}
		f.oid = oid
	}

	batchURL := fmt.Sprintf("%s/%s%s.git/info/lfs/objects/batch", c.endpoint, repo.GitPrefix(), repo.ID)
	for start := 0; start < len(files); start += batchSize {
		end := min(start+batchSize, len(files))

		body := lfsBatchRequest{
			Operation: "upload",
			Transfers: []string{"basic", "multipart"},
			HashAlgo:  "sha256",
			Objects:   make([]lfsObject, 0, end-start),
		}
		if revision != "" {
			body.Ref = &lfsRef{Name: revision}
		}
		byOID := make(map[string]*localFile, end-start)
		for _, f := range files[start:end] {
			body.Objects = append(body.Objects, lfsObject{OID: f.oid, Size: f.size})
			byOID[f.oid] = f
		}

		var result lfsBatchResponse
		resp, err := c.R().
			SetContext(ctx).
			SetHeader("Accept", lfsMimeType).
			SetHeader("Content-Type", lfsMimeType).
			SetBody(body).
			SetResult(&result).
			Post(batchURL)
		if err != nil {
			return fmt.Errorf("couldn't connect with lfs: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("lfs batch: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
		}

		for _, obj := range result.Objects {
			if obj.Error != nil {
				return fmt.Errorf("lfs object %s: %d %s", obj.OID, obj.Error.Code, obj.Error.Message)
			}
			f, ok := byOID[obj.OID]
			if !ok || obj.Actions == nil || obj.Actions.Upload == nil {
				// Объект уже есть в хранилище.
				continue
			}
			if err := c.uploadObject(ctx, f, obj.Actions.Upload); err != nil {
				return err
			}
			if obj.Actions.Verify != nil {
				if err := c.verifyObject(ctx, f, obj.Actions.Verify); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (c *Client) uploadObject(ctx context.Context, f *localFile, action *lfsAction) error {
	data, err := os.ReadFile(f.absPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.absPath, err)
	}

	chunk, ok := action.Header["chunk_size"]
	if !ok {
		resp, err := c.transfer.R().
			SetContext(ctx).
			SetHeaders(action.Header).
			SetBody(data).
			Put(action.Href)
		if err != nil {
			return fmt.Errorf("upload %s: %w", f.repoPath, err)
		}
		if resp.IsError() {
			return fmt.Errorf("upload %s: %s", f.repoPath, resp.Status())
		}
		return nil
	}

	chunkSize, err := strconv.Atoi(chunk)
	if err != nil || chunkSize <= 0 {
		return fmt.Errorf("upload %s: invalid chunk size %q", f.repoPath, chunk)
	}
	return c.uploadMultipart(ctx, f, action, data, chunkSize)
}

// uploadMultipart загружает части по адресам из заголовков "1", "2", ... и завершает загрузку.
func (c *Client) uploadMultipart(ctx context.Context, f *localFile, action *lfsAction, data []byte, chunkSize int) error {
	var parts []completedPart
	for n := 1; ; n++ {
		partURL, ok := action.Header[strconv.Itoa(n)]
		if !ok {
			break
		}
		offset := (n - 1) * chunkSize
		if offset >= len(data) {
			break
		}
		end := min(offset+chunkSize, len(data))

		resp, err := c.transfer.R().
			SetContext(ctx).
			SetBody(data[offset:end]).
			Put(partURL)
		if err != nil {
			return fmt.Errorf("upload %s part %d: %w", f.repoPath, n, err)
		}
		if resp.IsError() {
			return fmt.Errorf("upload %s part %d: %s", f.repoPath, n, resp.Status())
		}
		parts = append(parts, completedPart{PartNumber: n, ETag: resp.Header().Get("ETag")})
	}
	if len(parts) == 0 {
		return fmt.Errorf("upload %s: no multipart urls", f.repoPath)
	}

	resp, err := c.transfer.R().
		SetContext(ctx).
		SetHeader("Accept", lfsMimeType).
		SetHeader("Content-Type", lfsMimeType).
		SetBody(map[string]any{"oid": f.oid, "parts": parts}).
		Post(action.Href)
	if err != nil {
		return fmt.Errorf("complete upload %s: %w", f.repoPath, err)
	}
	if resp.IsError() {
		return fmt.Errorf("complete upload %s: %s", f.repoPath, resp.Status())
	}
	return nil
}

func (c *Client) verifyObject(ctx context.Context, f *localFile, action *lfsAction) error {
	resp, err := c.R().
		SetContext(ctx).
		SetHeaders(action.Header).
		SetHeader("Accept", lfsMimeType).
		SetHeader("Content-Type", lfsMimeType).
		SetBody(lfsObject{OID: f.oid, Size: f.size}).
		Post(action.Href)
	if err != nil {
		return fmt.Errorf("verify %s: %w", f.repoPath, err)
	}
	if resp.IsError() {
		return fmt.Errorf("verify %s: %s", f.repoPath, resp.Status())
	}
	return nil
}

// commit создаёт коммит: обычные файлы передаются в base64, LFS-файлы по oid.
func (c *Client) commit(ctx context.Context, repo entity.RepoRef, req entity.UploadRequest, files []*localFile) (*entity.CommitInfo, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	header := commitLine{Key: "header", Value: map[string]string{
		"summary":     req.CommitMessage,
		"description": req.CommitDescription,
	}}
	if err := enc.Encode(header); err != nil {
		return nil, fmt.Errorf("encode commit header: %w", err)
	}

	for _, f := range files {
		var line commitLine
		if f.mode == modeLFS {
			line = commitLine{Key: "lfsFile", Value: map[string]string{
				"path": f.repoPath,
				"algo": "sha256",
				"oid":  f.oid,
			}}
		} else {
			data, err := os.ReadFile(f.absPath)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", f.absPath, err)
			}
			line = commitLine{Key: "file", Value: map[string]string{
				"content":  base64.StdEncoding.EncodeToString(data),
				"path":     f.repoPath,
				"encoding": "base64",
			}}
		}
		if err := enc.Encode(line); err != nil {
			return nil, fmt.Errorf("encode commit line: %w", err)
		}
	}

	var result commitResponse
	resp, err := c.once.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-ndjson").
		SetBody(buf.Bytes()).
		SetResult(&result).
		Post(repo.APIPath() + "/commit/" + url.PathEscape(req.Revision))
	if err != nil {
		return nil, fmt.Errorf("couldn't connect with hub: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("commit: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}

	return &entity.CommitInfo{URL: result.CommitURL, OID: result.CommitOID}, nil
}

func sha256File(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", p, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
