package service

import (
	"errors"

	"noticeboard/internal/repository"
)

var (
	// ErrValidation 输入不合法，不会写入任何数据
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 公告或分类不存在
	ErrNotFound = repository.ErrNotFound
	// ErrMalformedStorage 存储内容无法解析
	ErrMalformedStorage = repository.ErrMalformedStorage
	// ErrReplacementRequired 删除分类时缺少有效的替代分类
	ErrReplacementRequired = errors.New("replacement category required")
)
