package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	DatabaseMySQL  = "mysql"
	DatabaseMemory = "memory"
)

// 表单校验常量
const (
	MinPasswordLength = 6
	MaxPostTitle      = 200
	MaxPostContent    = 2000
	DefaultPostLimit  = 50
)

// 文件上传相关常量
const (
	MimePDF         = "application/pdf"
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
	MaxUploadSize   = 32 << 20
)
