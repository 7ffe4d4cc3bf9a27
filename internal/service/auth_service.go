package service

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/kbase/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateIdentity  = errors.New("username or email already exists")
	ErrPasswordTooShort   = errors.New("password is shorter than the configured minimum")
	ErrInvalidEmail       = errors.New("invalid email format")
)

// AuthService wraps user credential checks and account creation.
type AuthService struct {
	db                *gorm.DB
	minPasswordLength int
}

// NewAuthService creates an AuthService instance.
func NewAuthService(gdb *gorm.DB, minPasswordLength int) *AuthService {
	if minPasswordLength <= 0 {
		minPasswordLength = 6
	}
	return &AuthService{db: gdb, minPasswordLength: minPasswordLength}
}

// Authenticate 按用户名或邮箱查找账号并校验密码。
// 查无此人与密码错误返回同一个错误，避免暴露账号是否存在。
func (s *AuthService) Authenticate(identifier, password string) (*db.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := s.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// CreateUser 校验并创建账号，密码只保存 bcrypt 哈希。
func (s *AuthService) CreateUser(username, email, password, role string) (*db.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, errors.New("username is required")
	}

	if len(password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}

	var existing db.User
	if err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if role != db.RoleAdmin && role != db.RoleEditor {
		role = db.RoleAdmin
	}

	user := db.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
