package db

import "gorm.io/gorm"

// Category 定义了分类模型
type Category struct {
	gorm.Model
	Name        string `gorm:"unique;not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Description string
}
