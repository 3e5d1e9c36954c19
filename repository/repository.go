// Package repository 租户隔离的数据访问层。
// 所有方法都显式接收 coupleID 并在查询上附加 couple_id 过滤，
// 跨租户的记录在这一层就不可见：查不到与不存在对调用方呈现同一个 NOT_FOUND。
package repository

import (
	"errors"

	"couplefin/apperr"

	"gorm.io/gorm"
)

// Atomic 工作单元：fn 内的全部写操作在同一事务中提交或回滚
func Atomic(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}

// translateNotFound 把 gorm 的未找到错误翻译为业务错误
func translateNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return err
}
