package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document 文档型记录的公共字段，ID 为 UUID 字符串。
// 不带 DeletedAt：删除即物理删除，不留墓碑。
// swagger:model
type Document struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}

func GenerateUUID() string {
	return uuid.New().String()
}
