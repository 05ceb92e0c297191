package util

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// EncodeCursor 将排序值数组编码为 Base64 字符串
func EncodeCursor(sortValues []interface{}) string {
	if len(sortValues) == 0 {
		return ""
	}
	b, _ := json.Marshal(sortValues)
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeCursor 将前端传来的 Base64 字符串解码为排序值数组
func DecodeCursor(cursor string) ([]interface{}, error) {
	if cursor == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, err
	}
	var sortValues []interface{}
	err = json.Unmarshal(b, &sortValues)
	return sortValues, err
}

var ErrInvalidCursor = errors.New("invalid cursor")

// EncodePageCursor 以 (时间, 文档ID) 生成翻页令牌
func EncodePageCursor(at time.Time, id string) string {
	if id == "" {
		return ""
	}
	return EncodeCursor([]interface{}{at.UTC().Format(time.RFC3339Nano), id})
}

// DecodePageCursor 空令牌返回零值与 ok=false
func DecodePageCursor(cursor string) (at time.Time, id string, ok bool, err error) {
	values, err := DecodeCursor(cursor)
	if err != nil {
		return time.Time{}, "", false, ErrInvalidCursor
	}
	if values == nil {
		return time.Time{}, "", false, nil
	}
	if len(values) != 2 {
		return time.Time{}, "", false, ErrInvalidCursor
	}
	raw, okAt := values[0].(string)
	id, okID := values[1].(string)
	if !okAt || !okID || id == "" {
		return time.Time{}, "", false, ErrInvalidCursor
	}
	at, err = time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, "", false, ErrInvalidCursor
	}
	return at, id, true, nil
}
