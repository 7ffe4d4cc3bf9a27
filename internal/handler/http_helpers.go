package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// flashMessage 是一条待展示的操作结果通知
type flashMessage struct {
	Kind    string
	Message string
}

func setFlash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)
	_ = session.Save()
}

// takeFlashes 取出并清空当前会话中的闪存消息。
func takeFlashes(c *gin.Context) []flashMessage {
	session := sessions.Default(c)

	messages := make([]flashMessage, 0)
	for _, kind := range []string{"success", "error"} {
		for _, value := range session.Flashes(kind) {
			if text, ok := value.(string); ok {
				messages = append(messages, flashMessage{Kind: kind, Message: text})
			}
		}
	}

	if len(messages) > 0 {
		_ = session.Save()
	}
	return messages
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseUintForm(c *gin.Context, key string) uint {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

func parseUintSlice(values []string) []uint {
	ids := make([]uint, 0, len(values))
	for _, raw := range values {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		parsed, err := strconv.ParseUint(trimmed, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(parsed))
	}
	return ids
}

func parsePositiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

// optionalUint 将查询参数解析为可空的 uint，空串或非法值返回 nil。
func optionalUint(raw string) *uint {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil || parsed == 0 {
		return nil
	}
	value := uint(parsed)
	return &value
}
