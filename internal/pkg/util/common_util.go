package util

import (
	"strings"
	"unicode/utf8"
)

// NormalizeUploaderName 去掉首尾空白并折叠内部连续空白
func NormalizeUploaderName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// RuneLen 按字符计数，上传者名可能包含中文或 emoji
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Contains 大小写不敏感
func Contains(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(s, target) {
			return true
		}
	}
	return false
}

// Ptr 取任意值的指针
func Ptr[T any](v T) *T {
	return &v
}
