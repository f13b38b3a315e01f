// Package testutil 测试辅助, 只被 _test.go 引用
package testutil

import (
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"retail_service/internal/model"
)

// NewDB 创建内存 SQLite 数据库并完成建表
// 内存库每个连接相互独立, 因此连接池限制为 1
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层连接失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// FakeEnqueuer 记录投递的任务
type FakeEnqueuer struct {
	mu   sync.Mutex
	Jobs []Job
}

// Job 一次投递
type Job struct {
	Name string
	Args []any
}

func (f *FakeEnqueuer) Enqueue(name string, args ...any) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Jobs = append(f.Jobs, Job{Name: name, Args: args})
	return name
}

// Names 按投递顺序返回任务名
func (f *FakeEnqueuer) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.Jobs))
	for _, j := range f.Jobs {
		names = append(names, j.Name)
	}
	return names
}
