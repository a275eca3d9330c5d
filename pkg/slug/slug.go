// Package slug 提供 URL 友好标识符的规范化与格式校验（纯函数，无 I/O）。
package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// LocationPattern 地点 slug：必须以两位年份后缀结尾，如 kyoto-24
	LocationPattern = regexp.MustCompile(`^[a-z0-9-]+-[0-9]{2}$`)
	// CollectionPattern 合集 slug：小写字母数字，以单个连字符分隔
	CollectionPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

var (
	ErrEmpty         = errors.New("slug 不能为空")
	ErrInvalidFormat = errors.New("slug 格式不合法")
)

// Normalize 小写化、去除变音符号、将非字母数字串替换为单个连字符并去掉首尾连字符。
// 对任意输入满足 Normalize(Normalize(s)) == Normalize(s)。
func Normalize(raw string) string {
	// transform.Chain 带内部状态，不能跨 goroutine 复用
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// ValidateFormat 校验 slug 是否匹配给定模式
func ValidateFormat(s string, pattern *regexp.Regexp) error {
	if s == "" {
		return ErrEmpty
	}
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %q 不匹配 %s", ErrInvalidFormat, s, pattern.String())
	}
	return nil
}

// YearSuffix 从年份标签中提取两位后缀（"2024" → "24"），标签不以至少两位数字结尾时返回 false
func YearSuffix(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return "", false
	}
	tail := label[len(label)-2:]
	for _, r := range tail {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return tail, true
}

// ForLocation 由地点名称与年份标签推导 slug，如 ("Kyoto", "2024") → "kyoto-24"
func ForLocation(name, yearLabel string) (string, bool) {
	base := Normalize(name)
	suffix, ok := YearSuffix(yearLabel)
	if base == "" || !ok {
		return "", false
	}
	return base + "-" + suffix, true
}
