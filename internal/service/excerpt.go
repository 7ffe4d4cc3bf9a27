package service

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// excerptLength 是摘要与搜索片段的目标长度（字符数）
const excerptLength = 200

var (
	stripPolicy  = bluemonday.StrictPolicy()
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// StripMarkup removes all markup from content and collapses whitespace
// runs into single spaces.
func StripMarkup(content string) string {
	text := stripPolicy.Sanitize(content)
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// GenerateExcerpt 从正文生成摘要：去除标记、压缩空白并截断。
func GenerateExcerpt(content string) string {
	return truncateText(StripMarkup(content), excerptLength)
}

// SearchExcerpt produces a contextual snippet for a search hit: a window of
// roughly excerptLength characters centered on the first occurrence of the
// query, adjusted to whole words and marked with ellipses where truncated.
// Falls back to a plain truncation when the query is absent verbatim.
func SearchExcerpt(content, query string) string {
	text := StripMarkup(content)
	trimmedQuery := strings.TrimSpace(query)
	if trimmedQuery == "" {
		return truncateText(text, excerptLength)
	}

	runes := []rune(text)
	pos := indexFold(runes, []rune(trimmedQuery))
	if pos < 0 {
		return truncateText(text, excerptLength)
	}

	start := pos - excerptLength/2
	if start < 0 {
		start = 0
	}
	end := start + excerptLength
	if end > len(runes) {
		end = len(runes)
	}

	excerpt := string(runes[start:end])

	// 避免窗口两端切断单词
	if start > 0 {
		if idx := strings.IndexByte(excerpt, ' '); idx >= 0 {
			excerpt = excerpt[idx+1:]
		}
	}
	if end < len(runes) {
		if idx := strings.LastIndexByte(excerpt, ' '); idx >= 0 {
			excerpt = excerpt[:idx]
		}
		excerpt += "..."
	}
	if start > 0 {
		excerpt = "..." + excerpt
	}

	return excerpt
}

func truncateText(text string, length int) string {
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return string(runes[:length]) + "..."
}

// indexFold 返回 needle 在 haystack 中首次出现的位置（忽略大小写），未找到时返回 -1。
func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}

	for i := 0; i+len(needle) <= len(haystack); i++ {
		matched := true
		for j := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(needle[j]) {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}
