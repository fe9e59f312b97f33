// Package memstore 内存版内容存储，供本地开发 (database.driver=memory) 和测试使用。
// 行为与 gorm 仓库保持一致：按 createdAt/completedAt 倒序、不存在返回 util.ErrNotFound。
package memstore

import (
	"encoding/json"
	"sync"
	"time"
)

type DB struct {
	mu         sync.RWMutex
	users      map[string]*userRow
	quizzes    map[string][]byte
	progress   map[string][][]byte
	posts      map[string][]byte
	programmes map[string][]byte
	files      [][]byte

	// Now 可在测试中替换
	Now func() time.Time
	// Fail 非 nil 时读写操作返回该错误，用于模拟存储离线
	Fail error
}

type userRow struct {
	data []byte
}

func Open() *DB {
	return &DB{
		users:      make(map[string]*userRow),
		quizzes:    make(map[string][]byte),
		progress:   make(map[string][][]byte),
		posts:      make(map[string][]byte),
		programmes: make(map[string][]byte),
		Now:        time.Now,
	}
}

func (db *DB) SetFailure(err error) {
	db.mu.Lock()
	db.Fail = err
	db.mu.Unlock()
}

func (db *DB) failure() error {
	return db.Fail
}

// 存储时序列化，读取时反序列化，保证调用方拿到的是副本
func encode(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func decode(data []byte, v interface{}) {
	if err := json.Unmarshal(data, v); err != nil {
		panic(err)
	}
}
