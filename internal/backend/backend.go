// Package backend 在进程启动时选择存储后端，并返回统一的 Repository 聚合。
package backend

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"catalog-cms/config"
	"catalog-cms/internal/repository"
	"catalog-cms/internal/repository/sqlstore"
	"catalog-cms/pkg/database"
)

// Kind 存储后端类型
type Kind string

const (
	KindORM       Kind = repository.BackendORM
	KindDirectSQL Kind = repository.BackendDirectSQL
)

// Capabilities 运行时能力
type Capabilities struct {
	Production     bool // 部署运行时
	SQLHandleBound bool // 已绑定直连数据库
}

// Select 仅当处于生产运行时且直连句柄已绑定时使用直连 SQL，其余情况回落到 ORM
func Select(caps Capabilities) Kind {
	if caps.Production && caps.SQLHandleBound {
		return KindDirectSQL
	}
	return KindORM
}

// CapabilitiesFrom 从配置推导运行时能力
func CapabilitiesFrom(cfg *config.Config) Capabilities {
	return Capabilities{
		Production:     cfg.Runtime.IsProduction(),
		SQLHandleBound: cfg.SQLite.Bound(),
	}
}

// Store 已打开的后端：Repository 聚合与底层连接
type Store struct {
	Kind       Kind
	Repository *repository.Repository
	sqlDB      *sql.DB
}

// Close 关闭底层连接
func (s *Store) Close() error {
	if s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping 健康检查
func (s *Store) Ping(ctx context.Context) error {
	if s.sqlDB == nil {
		return fmt.Errorf("存储未初始化")
	}
	return s.sqlDB.PingContext(ctx)
}

// Open 选择后端、建立连接并执行迁移。整个进程只调用一次
func Open(cfg *config.Config, logger *zap.Logger) (*Store, error) {
	kind := Select(CapabilitiesFrom(cfg))
	logger.Info("存储后端已选定", zap.String("backend", string(kind)), zap.String("runtime", cfg.Runtime.Env))

	switch kind {
	case KindDirectSQL:
		db, err := database.OpenSQL(&cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		if err := database.RunSQLiteMigrations(db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Store{Kind: kind, Repository: sqlstore.NewRepository(db), sqlDB: db}, nil

	default:
		gdb, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return &Store{Kind: kind, Repository: repository.NewRepository(gdb), sqlDB: sqlDB}, nil
	}
}
