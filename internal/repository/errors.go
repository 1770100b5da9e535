package repository

import "errors"

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrMalformedStorage 存储内容无法解析
	ErrMalformedStorage = errors.New("malformed storage")
)
