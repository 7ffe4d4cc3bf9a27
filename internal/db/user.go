package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 用户角色常量，admin 与 editor 均可进入后台
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User 定义了用户模型
type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:editor"`
}

// EnsureAdmin 存在性检查：若提供的用户名、邮箱与密码均非空且不存在对应账号，
// 则创建一个 bcrypt 哈希的管理员用户。
func EnsureAdmin(username, email, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedEmail := strings.TrimSpace(email)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return DB.Create(&User{
			Username:     trimmedUser,
			Email:        trimmedEmail,
			PasswordHash: string(hashed),
			Role:         RoleAdmin,
		}).Error
	}

	return nil
}
