package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMultipleWildcards = errors.New("path pattern supports at most one wildcard")

// pathPattern 精确路径，或带单个通配符的 prefix*suffix
type pathPattern struct {
	raw      string
	prefix   string
	suffix   string
	wildcard bool
}

func compilePathPattern(pattern string) (pathPattern, error) {
	switch strings.Count(pattern, wildcardMarker) {
	case 0:
		return pathPattern{raw: pattern}, nil
	case 1:
		prefix, suffix, _ := strings.Cut(pattern, wildcardMarker)
		return pathPattern{raw: pattern, prefix: prefix, suffix: suffix, wildcard: true}, nil
	default:
		return pathPattern{}, fmt.Errorf("%w: %q", ErrMultipleWildcards, pattern)
	}
}

// match 对完整的 path+query 进行匹配。
// prefix 与 suffix 允许在短输入上重叠，不做最小长度检查。
func (p pathPattern) match(uri string) bool {
	if !p.wildcard {
		return uri == p.raw
	}
	return strings.HasPrefix(uri, p.prefix) && strings.HasSuffix(uri, p.suffix)
}

func (p pathPattern) String() string {
	return p.raw
}
