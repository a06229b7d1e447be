// Package pathutil 提供路径匹配工具函数。
// 这是一个内部包，仅供 middleware 包使用。
package pathutil

import "strings"

// PathMatcher 是路径匹配函数类型。
type PathMatcher func(path string) bool

// NewPathMatcher 创建一个路径匹配器。
// 支持精确匹配（skipPaths）和前缀匹配（skipPrefixes）。
func NewPathMatcher(skipPaths, skipPrefixes []string) PathMatcher {
	pathSet := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		pathSet[p] = true
	}

	return func(path string) bool {
		if pathSet[path] {
			return true
		}
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}
}

// ShouldSkip 直接检查路径是否应该跳过，适用于一次性判断。
func ShouldSkip(path string, skipPaths, skipPrefixes []string) bool {
	for _, p := range skipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
