package errors

import "errors"

// 记录库层面的通用错误，Service 层据此转换为业务错误

// ErrScopeNotFound 楼栋楼层不存在（或已删除）
var ErrScopeNotFound = errors.New("楼栋楼层不存在")

// ErrInvalidDate 日期参数无法解析
var ErrInvalidDate = errors.New("日期格式无效，应为 YYYY-MM-DD")
