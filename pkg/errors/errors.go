package errors

import "errors"

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

	// ErrPermissionDenied 当前操作者无权执行该操作（服务层鉴权）
	ErrPermissionDenied = errors.New("无权执行该操作")
)
