package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // 远程 libsql / Turso
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // 本地嵌入式 SQLite

	"catalog-cms/config"
)

// OpenSQL 打开直连 SQL 句柄：libsql:// 或 wss:// 走 libsql 驱动，其余走本地 SQLite
func OpenSQL(cfg *config.SQLiteConfig, logger *zap.Logger) (*sql.DB, error) {
	dsn := strings.TrimSpace(cfg.URL)
	if dsn == "" {
		return nil, fmt.Errorf("sqlite.url 未配置")
	}

	driverName := "sqlite"
	if isRemote(dsn) {
		driverName = "libsql"
		if cfg.AuthToken != "" {
			dsn = withQuery(dsn, "authToken", cfg.AuthToken)
		}
	} else {
		dsn = withQuery(dsn, "_pragma", "foreign_keys(1)")
		dsn = withQuery(dsn, "_pragma", "busy_timeout(5000)")
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("打开直连数据库失败: %w", err)
	}

	// 内存库每个连接都是独立数据库，本地驱动统一限制为单连接
	if driverName == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("直连数据库 ping 失败: %w", err)
	}

	logger.Info("直连数据库连接成功", zap.String("driver", driverName))
	return db, nil
}

func isRemote(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") ||
		strings.HasPrefix(dsn, "wss://") ||
		strings.HasPrefix(dsn, "https://")
}

func withQuery(dsn, key, value string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + url.QueryEscape(value)
}
