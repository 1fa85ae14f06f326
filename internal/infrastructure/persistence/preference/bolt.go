// Package preference 提供偏好存储与看板请求序号的本地实现
package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketPreferences = []byte("preferences") // namespace -> (key -> json)

// BoltStore 基于 bbolt 的持久化偏好存储，每个命名空间一个子 bucket
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore 打开（必要时创建）偏好数据库文件
func OpenBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create preference dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open preference db: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketPreferences)
		return createErr
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create preferences bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close 关闭数据库
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Get 读取偏好
func (s *BoltStore) Get(_ context.Context, namespace, key string, out any) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		ns := tx.Bucket(bucketPreferences).Bucket([]byte(namespace))
		if ns == nil {
			return nil
		}
		data := ns.Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode preference %s/%s: %w", namespace, key, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Put 写入偏好
func (s *BoltStore) Put(_ context.Context, namespace, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preference: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		ns, err := tx.Bucket(bucketPreferences).CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return fmt.Errorf("failed to create namespace bucket: %w", err)
		}
		if err := ns.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to store preference: %w", err)
		}
		return nil
	})
}

// Delete 删除偏好
func (s *BoltStore) Delete(_ context.Context, namespace, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		ns := tx.Bucket(bucketPreferences).Bucket([]byte(namespace))
		if ns == nil {
			return nil
		}
		return ns.Delete([]byte(key))
	})
}
