package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	SessionTimeout    int // 会话有效期，单位秒
	GinMode           string
	SiteName          string
	SiteBaseURL       string
	MinPasswordLength int
	CSRFTokenName     string
	ArticlesPerPage   int
	SearchPerPage     int
	DebugMode         bool
	AdminUsername     string
	AdminEmail        string
	AdminPassword     string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "kbase.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "kbase-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	siteName := strings.TrimSpace(os.Getenv("SITE_NAME"))
	if siteName == "" {
		siteName = "知识库"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = "http://localhost:8080"
	}

	csrfTokenName := strings.TrimSpace(os.Getenv("CSRF_TOKEN_NAME"))
	if csrfTokenName == "" {
		csrfTokenName = "_token"
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      databasePath,
		SessionSecret:     sessionSecret,
		SessionTimeout:    envInt("SESSION_TIMEOUT", 3600),
		GinMode:           ginMode,
		SiteName:          siteName,
		SiteBaseURL:       siteBaseURL,
		MinPasswordLength: envInt("MIN_PASSWORD_LENGTH", 6),
		CSRFTokenName:     csrfTokenName,
		ArticlesPerPage:   envInt("ARTICLES_PER_PAGE", 12),
		SearchPerPage:     envInt("SEARCH_RESULTS_PER_PAGE", 10),
		DebugMode:         envBool("DEBUG_MODE", false),
		AdminUsername:     strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminEmail:        strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword:     strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
	}
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
