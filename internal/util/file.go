package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

var ErrInvalidFileType = errors.New("invalid file type")

// AllowedUploadTypes 后台上传只接受 PDF 和图片
var AllowedUploadTypes = []string{MimePDF, MimeImage}

// DetectMimeType 读取文件头部嗅探 MIME 类型，返回的 reader 仍包含完整内容
func DetectMimeType(reader io.Reader, allowedTypes []string) (string, io.Reader, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head := buffer[:n]
	full := io.MultiReader(strings.NewReader(string(head)), reader)

	mimeType := http.DetectContentType(head)

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, full, nil
		}
	}

	return mimeType, nil, ErrInvalidFileType
}

// SanitizeFileName 去掉路径部分，避免对象键越界
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
