package resource

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidItem      = errors.New("invalid item")
)

const (
	IDField = "id"

	DefaultPage  = 1
	DefaultLimit = 10
)

// Item 资源集合中的一项：任意 JSON 对象，id 字段唯一
type Item map[string]any

// AsItem 只有 JSON 对象才是合法 item，数组、字符串、数字、null 都不是
func AsItem(v any) (Item, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return Item(obj), true
	case Item:
		return obj, true
	default:
		return nil, false
	}
}

// ID 返回 item 的 id；非字符串 id 视为无 id
func (it Item) ID() (string, bool) {
	id, ok := it[IDField].(string)
	return id, ok
}

// Clone 浅拷贝，避免调用方修改存储内部的数据
func (it Item) Clone() Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

// Merge 浅合并 patch 到 item 的拷贝上
func (it Item) Merge(patch Item) Item {
	out := it.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// NewID 生成 6 位十六进制 id
func NewID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Paginate 分页。page/limit 都未提供时返回全部；
// 提供任意一个时另一个取默认值；非数字或小于 1 返回空列表。
func Paginate(items []Item, page, limit *string) []Item {
	if page == nil && limit == nil {
		return items
	}

	p, l := DefaultPage, DefaultLimit
	var err error
	if page != nil {
		if p, err = strconv.Atoi(*page); err != nil {
			return []Item{}
		}
	}
	if limit != nil {
		if l, err = strconv.Atoi(*limit); err != nil {
			return []Item{}
		}
	}
	if p < 1 || l < 1 {
		return []Item{}
	}

	start := (p - 1) * l
	if start >= len(items) {
		return []Item{}
	}
	end := start + l
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
