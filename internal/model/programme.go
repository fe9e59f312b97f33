package model

// Programme 备考项目目录
// swagger:model Programme
type Programme struct {
	Document
	Title        string   `gorm:"size:255;not null" json:"title" yaml:"title"`
	Slug         string   `gorm:"size:100;uniqueIndex;not null" json:"slug" yaml:"slug"`
	Acronym      string   `gorm:"size:20" json:"acronym" yaml:"acronym"`
	Category     string   `gorm:"size:100" json:"category" yaml:"category"`
	Description  string   `gorm:"type:text" json:"description" yaml:"description"`
	ExamSubjects []string `gorm:"serializer:json;type:json" json:"examSubjects" yaml:"examSubjects"`
	IsPublished  bool     `gorm:"index;default:false" json:"isPublished" yaml:"isPublished"`
}

func (Programme) TableName() string {
	return "programmes"
}
