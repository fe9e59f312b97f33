package service

import (
	"context"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

type FileService struct {
	FileRepo FileStore
	Blobs    BlobStore
	now      func() time.Time
}

func NewFileService(fileRepo FileStore, blobs BlobStore) *FileService {
	return &FileService{FileRepo: fileRepo, Blobs: blobs, now: time.Now}
}

type UploadRequest struct {
	ProgrammeID string
	Category    model.FileCategory
	Title       string
	Description string
	FileName    string
	Size        int64
	UploadedBy  string
}

// ObjectKey programmes/{programmeId}/{category}/{fileName}
func ObjectKey(programmeID string, category model.FileCategory, fileName string) string {
	return fmt.Sprintf("programmes/%s/%s/%s", programmeID, category, util.SanitizeFileName(fileName))
}

// Upload 校验元数据、写入对象存储后记录文件信息
func (s *FileService) Upload(ctx context.Context, req UploadRequest, content io.Reader) (*model.UploadedFile, error) {
	if content == nil || req.FileName == "" {
		return nil, util.NewValidationError("file", "required")
	}
	if strings.TrimSpace(req.ProgrammeID) == "" {
		return nil, util.NewValidationError("programmeId", "required")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.NewValidationError("title", "required")
	}
	if req.Category == "" {
		req.Category = model.CategoryOther
	}
	if !req.Category.Valid() {
		return nil, util.NewValidationError("category", "unknown category")
	}

	contentType, reader, err := util.DetectMimeType(content, util.AllowedUploadTypes)
	if err != nil {
		return nil, util.NewValidationError("file", "only PDF and image files are accepted")
	}

	key := ObjectKey(req.ProgrammeID, req.Category, req.FileName)
	url, err := s.Blobs.Put(ctx, key, reader, req.Size, contentType)
	if err != nil {
		return nil, util.Unavailable("upload file", err)
	}

	f := &model.UploadedFile{
		ProgrammeID: req.ProgrammeID,
		Type:        model.ClassifyFileType(contentType),
		Category:    req.Category,
		Title:       title,
		Description: req.Description,
		FileName:    util.SanitizeFileName(req.FileName),
		FileURL:     url,
		FileSize:    req.Size,
		UploadedBy:  req.UploadedBy,
		UploadedAt:  s.now(),
	}
	if err := s.FileRepo.Create(ctx, f); err != nil {
		// 元数据写入失败时清理孤立对象
		if derr := s.Blobs.Delete(ctx, key); derr != nil {
			logger.Log.Warn("orphan blob cleanup failed", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}
	return f, nil
}

func (s *FileService) List(ctx context.Context, programmeID string) ([]model.UploadedFile, error) {
	files, err := s.FileRepo.List(ctx, programmeID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []model.UploadedFile{}
	}
	return files, nil
}
