package repository

import "context"

// PreferenceStore 偏好存储接口，值以 JSON 文档形式保存，按命名空间隔离。
// 写入语义为最后写入者胜出。
type PreferenceStore interface {
	// Get 读取并反序列化到 out，不存在时返回 false
	Get(ctx context.Context, namespace, key string, out any) (bool, error)
	// Put 序列化并写入
	Put(ctx context.Context, namespace, key string, value any) error
	// Delete 删除键，不存在时不报错
	Delete(ctx context.Context, namespace, key string) error
}

// FetchSequencer 按视图维护单调递增的请求序号
type FetchSequencer interface {
	// Next 分配并返回新序号
	Next(ctx context.Context, view string) (uint64, error)
	// Current 返回最近一次分配的序号
	Current(ctx context.Context, view string) (uint64, error)
}
