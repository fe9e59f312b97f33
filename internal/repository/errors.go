package repository

import (
	"errors"
	"faaqs_backend/internal/util"

	"gorm.io/gorm"
)

// translate 把 gorm 错误映射为业务错误：记录不存在 -> ErrNotFound，其余视为存储不可用
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotFound
	}
	return util.Unavailable(op, err)
}
