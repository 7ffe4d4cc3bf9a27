package db

import "gorm.io/gorm"

// 文章状态常量
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Article 定义了文章模型
type Article struct {
	gorm.Model
	Title      string `gorm:"not null"`
	Slug       string `gorm:"uniqueIndex;not null"`
	Content    string `gorm:"not null"`
	Excerpt    string
	CategoryID *uint
	Category   *Category
	AuthorID   *uint
	Author     *User `gorm:"foreignKey:AuthorID"`
	Status     string `gorm:"not null;default:draft;index"`
	Featured   bool   `gorm:"not null;default:false"`
	Views      int64  `gorm:"not null;default:0"`
	Tags       []Tag  `gorm:"many2many:article_tags;"`
}

// ValidStatus 判断给定值是否为合法的文章状态
func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}
