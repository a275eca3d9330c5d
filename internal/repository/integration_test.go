//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
	"catalog-cms/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=catalog password=catalog_password dbname=catalog_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取底层连接失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupYear 创建独立的测试年份并返回清理函数
func setupYear(t *testing.T) (*repository.Repository, *model.Year, func()) {
	t.Helper()
	repo := repository.NewRepository(testDB)
	year := &model.Year{
		Label:      fmt.Sprintf("T%d", time.Now().UnixNano()),
		Status:     model.StatusDraft,
		OrderIndex: "1.0",
	}
	if err := repo.Year.Create(context.Background(), year); err != nil {
		t.Fatalf("创建年份失败: %v", err)
	}

	cleanup := func() {
		testDB.Exec("DELETE FROM collection_assets WHERE collection_id IN (SELECT collection_id FROM collections WHERE year_id = ?)", year.YearID)
		testDB.Exec("DELETE FROM collections WHERE year_id = ?", year.YearID)
		testDB.Exec("DELETE FROM locations WHERE year_id = ?", year.YearID)
		testDB.Exec("DELETE FROM years WHERE year_id = ?", year.YearID)
	}
	return repo, year, cleanup
}

func createLocation(t *testing.T, repo *repository.Repository, yearID, slug, idx string) *model.Location {
	t.Helper()
	loc := &model.Location{YearID: yearID, Name: slug, Slug: slug, OrderIndex: idx}
	if err := repo.Location.Create(context.Background(), loc); err != nil {
		t.Fatalf("创建地点失败: %v", err)
	}
	return loc
}

// ═══════════════════════════════════════════════════════════
// Location
// ═══════════════════════════════════════════════════════════

func TestLocationRepo_DuplicateSlug(t *testing.T) {
	repo, year, cleanup := setupYear(t)
	defer cleanup()

	createLocation(t, repo, year.YearID, "kyoto-24", "1.0")
	err := repo.Location.Create(context.Background(), &model.Location{
		YearID: year.YearID, Name: "Kyoto", Slug: "kyoto-24", OrderIndex: "2.0",
	})
	if err != repository.ErrDuplicate {
		t.Errorf("期望 ErrDuplicate，实际: %v", err)
	}
}

func TestLocationRepo_CollectionCountAndReferencedDelete(t *testing.T) {
	repo, year, cleanup := setupYear(t)
	defer cleanup()
	ctx := context.Background()

	loc := createLocation(t, repo, year.YearID, "kyoto-24", "1.0")
	col := &model.Collection{YearID: year.YearID, LocationID: &loc.LocationID, Slug: "temples", Title: "Temples", Status: model.StatusDraft, OrderIndex: "1.0"}
	if err := repo.Collection.Create(ctx, col); err != nil {
		t.Fatalf("创建合集失败: %v", err)
	}

	got, err := repo.Location.GetByID(ctx, year.YearID, loc.LocationID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if got.CollectionCount != 1 {
		t.Errorf("期望合集数 1，实际 %d", got.CollectionCount)
	}

	if err := repo.Location.Delete(ctx, year.YearID, loc.LocationID); err != repository.ErrReferenced {
		t.Errorf("仍被合集引用时期望 ErrReferenced，实际: %v", err)
	}
}

func TestLocationRepo_ReorderRollback(t *testing.T) {
	repo, year, cleanup := setupYear(t)
	defer cleanup()
	ctx := context.Background()

	a := createLocation(t, repo, year.YearID, "a-24", "1.0")
	b := createLocation(t, repo, year.YearID, "b-24", "2.0")

	err := repo.Location.Reorder(ctx, year.YearID, map[string]string{
		a.LocationID: "2.0",
		b.LocationID: "1.0",
		model.NewID(): "3.0", // 不存在的 id 导致整体回滚
	}, "tester")
	if err != repository.ErrNotFound {
		t.Fatalf("期望 ErrNotFound，实际: %v", err)
	}

	got, _ := repo.Location.GetByID(ctx, year.YearID, a.LocationID)
	if got.OrderIndex != "1.0" {
		t.Errorf("回滚后排序应保持 1.0，实际 %s", got.OrderIndex)
	}

	if err := repo.Location.Reorder(ctx, year.YearID, map[string]string{a.LocationID: "2.0", b.LocationID: "1.0"}, "tester"); err != nil {
		t.Fatalf("Reorder 失败: %v", err)
	}
	got, _ = repo.Location.GetByID(ctx, year.YearID, a.LocationID)
	if got.OrderIndex != "2.0" {
		t.Errorf("期望 2.0，实际 %s", got.OrderIndex)
	}
}

// ═══════════════════════════════════════════════════════════
// Asset / Audit
// ═══════════════════════════════════════════════════════════

func TestAssetRepo_AttachListDetach(t *testing.T) {
	repo, year, cleanup := setupYear(t)
	defer cleanup()
	ctx := context.Background()

	col := &model.Collection{YearID: year.YearID, Slug: "temples", Title: "Temples", Status: model.StatusDraft, OrderIndex: "1.0"}
	if err := repo.Collection.Create(ctx, col); err != nil {
		t.Fatalf("创建合集失败: %v", err)
	}
	asset := &model.Asset{Title: "Gate", StorageKey: "photos/gate.jpg"}
	if err := repo.Asset.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("创建资源失败: %v", err)
	}
	defer testDB.Exec("DELETE FROM assets WHERE asset_id = ?", asset.AssetID)

	link := &model.CollectionAsset{CollectionID: col.CollectionID, AssetID: asset.AssetID, OrderIndex: "1.0"}
	if err := repo.Asset.Attach(ctx, link); err != nil {
		t.Fatalf("Attach 失败: %v", err)
	}
	dup := &model.CollectionAsset{CollectionID: col.CollectionID, AssetID: asset.AssetID, OrderIndex: "2.0"}
	if err := repo.Asset.Attach(ctx, dup); err != repository.ErrDuplicate {
		t.Errorf("重复关联期望 ErrDuplicate，实际: %v", err)
	}

	links, err := repo.Asset.ListByCollection(ctx, col.CollectionID)
	if err != nil || len(links) != 1 || links[0].Asset == nil || links[0].Asset.Title != "Gate" {
		t.Fatalf("ListByCollection 结果不正确: %+v, %v", links, err)
	}

	if err := repo.Asset.Detach(ctx, col.CollectionID, asset.AssetID); err != nil {
		t.Fatalf("Detach 失败: %v", err)
	}
	if err := repo.Asset.Detach(ctx, col.CollectionID, asset.AssetID); err != repository.ErrNotFound {
		t.Errorf("重复移除期望 ErrNotFound，实际: %v", err)
	}
}

func TestAuditRepo_NewestFirst(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	entityID := model.NewID()
	defer testDB.Exec("DELETE FROM audit_logs WHERE entity_id = ?", entityID)

	base := time.Now().UTC()
	for i, action := range []string{model.ActionCreate, model.ActionEdit, model.ActionSort} {
		entry := &model.AuditLog{
			Actor: "tester", ActorType: "editor",
			EntityType: model.EntityLocation, EntityID: entityID,
			Action: action, RequestID: "req-" + action,
			OccurredAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Audit.Append(ctx, entry); err != nil {
			t.Fatalf("Append 失败: %v", err)
		}
	}

	entries, err := repo.Audit.List(ctx, repository.AuditFilter{EntityType: model.EntityLocation, EntityID: entityID, Limit: 2})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != model.ActionSort || entries[1].Action != model.ActionEdit {
		t.Errorf("期望最新的两条且倒序: %+v", entries)
	}
	if len(entries) > 0 && entries[0].RequestID != "req-sort" {
		t.Errorf("请求追踪 ID 应持久化，实际 %q", entries[0].RequestID)
	}
}
