package model

import (
	"strings"
	"time"
)

type FileType string

const (
	FilePDF   FileType = "pdf"
	FileImage FileType = "image"
)

type FileCategory string

const (
	CategoryRevisionSheet FileCategory = "revision-sheet"
	CategoryPastPaper     FileCategory = "past-paper"
	CategoryMethodology   FileCategory = "methodology"
	CategoryOther         FileCategory = "other"
)

func (c FileCategory) Valid() bool {
	switch c {
	case CategoryRevisionSheet, CategoryPastPaper, CategoryMethodology, CategoryOther:
		return true
	}
	return false
}

// ClassifyFileType 含 pdf 的 content-type 归为 pdf，其余一律视为图片
func ClassifyFileType(contentType string) FileType {
	if strings.Contains(contentType, "pdf") {
		return FilePDF
	}
	return FileImage
}

// UploadedFile files 集合中的文件元数据，实际对象在 Blob 存储中
// swagger:model UploadedFile
type UploadedFile struct {
	ID          string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProgrammeID string       `gorm:"index;type:varchar(36)" json:"programmeId"`
	Type        FileType     `gorm:"size:10" json:"type"`
	Category    FileCategory `gorm:"size:30" json:"category"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	FileName    string       `gorm:"size:255" json:"fileName"`
	FileURL     string       `gorm:"size:512" json:"fileUrl"`
	FileSize    int64        `json:"fileSize"`
	UploadedBy  string       `gorm:"type:varchar(36)" json:"uploadedBy"`
	UploadedAt  time.Time    `json:"uploadedAt"`
}

func (UploadedFile) TableName() string {
	return "files"
}
