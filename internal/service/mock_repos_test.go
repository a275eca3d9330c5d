package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"catalog-cms/internal/event"
	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
)

// ── 内存版存储：所有 mock repository 共享同一份数据 ──

type mockDB struct {
	mu          sync.Mutex
	seq         int
	years       map[string]*model.Year
	locations   map[string]*model.Location
	collections map[string]*model.Collection
	assets      map[string]*model.Asset
	links       map[string]*model.CollectionAsset // collectionID/assetID → 关联
	audits      []model.AuditLog

	// 故障注入
	reorderErr error
	appendErr  error
	writes     int // 成功的写操作次数
}

func newMockDB() *mockDB {
	return &mockDB{
		years:       make(map[string]*model.Year),
		locations:   make(map[string]*model.Location),
		collections: make(map[string]*model.Collection),
		assets:      make(map[string]*model.Asset),
		links:       make(map[string]*model.CollectionAsset),
	}
}

func newMockRepository() (*repository.Repository, *mockDB) {
	db := newMockDB()
	return &repository.Repository{
		Backend:    "mock",
		Year:       &mockYearRepo{db},
		Location:   &mockLocationRepo{db},
		Collection: &mockCollectionRepo{db},
		Asset:      &mockAssetRepo{db},
		Audit:      &mockAuditRepo{db},
	}, db
}

func (db *mockDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%03d", prefix, db.seq)
}

func (db *mockDB) collectionCount(locationID string) int64 {
	var n int64
	for _, c := range db.collections {
		if c.LocationID != nil && *c.LocationID == locationID {
			n++
		}
	}
	return n
}

func (db *mockDB) assetCount(collectionID string) int64 {
	var n int64
	for _, l := range db.links {
		if l.CollectionID == collectionID {
			n++
		}
	}
	return n
}

func linkKey(collectionID, assetID string) string { return collectionID + "/" + assetID }

// ── Mock YearRepository ──

type mockYearRepo struct{ db *mockDB }

func (m *mockYearRepo) Create(_ context.Context, year *model.Year) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if year.YearID == "" {
		year.YearID = m.db.nextID("year")
	}
	now := time.Now().UTC()
	year.CreatedAt, year.UpdatedAt = now, now
	cp := *year
	m.db.years[year.YearID] = &cp
	m.db.writes++
	return nil
}

func (m *mockYearRepo) GetByID(_ context.Context, id string) (*model.Year, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	y, ok := m.db.years[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *y
	return &cp, nil
}

func (m *mockYearRepo) List(_ context.Context) ([]model.Year, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Year
	for _, y := range m.db.years {
		out = append(out, *y)
	}
	return out, nil
}

func (m *mockYearRepo) ListOrderIndexes(_ context.Context) ([]string, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []string
	for _, y := range m.db.years {
		out = append(out, y.OrderIndex)
	}
	return out, nil
}

// ── Mock LocationRepository ──

type mockLocationRepo struct{ db *mockDB }

func (m *mockLocationRepo) slugTaken(yearID, slug, excludeID string) bool {
	for _, l := range m.db.locations {
		if l.YearID == yearID && l.Slug == slug && l.LocationID != excludeID {
			return true
		}
	}
	return false
}

func (m *mockLocationRepo) view(l *model.Location) *model.Location {
	cp := *l
	cp.CollectionCount = m.db.collectionCount(l.LocationID)
	return &cp
}

func (m *mockLocationRepo) Create(_ context.Context, loc *model.Location) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.slugTaken(loc.YearID, loc.Slug, "") {
		return repository.ErrDuplicate
	}
	if loc.LocationID == "" {
		loc.LocationID = m.db.nextID("loc")
	}
	now := time.Now().UTC()
	loc.CreatedAt, loc.UpdatedAt = now, now
	cp := *loc
	m.db.locations[loc.LocationID] = &cp
	m.db.writes++
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, yearID, id string) (*model.Location, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	l, ok := m.db.locations[id]
	if !ok || l.YearID != yearID {
		return nil, repository.ErrNotFound
	}
	return m.view(l), nil
}

func (m *mockLocationRepo) FindByID(_ context.Context, id string) (*model.Location, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	l, ok := m.db.locations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.view(l), nil
}

func (m *mockLocationRepo) FindBySlug(_ context.Context, yearID, slug string) (*model.Location, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, l := range m.db.locations {
		if l.YearID == yearID && l.Slug == slug {
			return m.view(l), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockLocationRepo) ListByYear(_ context.Context, yearID string) ([]model.Location, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Location
	for _, l := range m.db.locations {
		if l.YearID == yearID {
			out = append(out, *m.view(l))
		}
	}
	return out, nil
}

func (m *mockLocationRepo) ListOrderIndexes(_ context.Context, yearID string) ([]string, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []string
	for _, l := range m.db.locations {
		if l.YearID == yearID {
			out = append(out, l.OrderIndex)
		}
	}
	return out, nil
}

func (m *mockLocationRepo) Update(_ context.Context, loc *model.Location) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	existing, ok := m.db.locations[loc.LocationID]
	if !ok || existing.YearID != loc.YearID {
		return repository.ErrNotFound
	}
	if m.slugTaken(loc.YearID, loc.Slug, loc.LocationID) {
		return repository.ErrDuplicate
	}
	loc.UpdatedAt = time.Now().UTC()
	cp := *loc
	cp.CollectionCount = 0
	m.db.locations[loc.LocationID] = &cp
	m.db.writes++
	return nil
}

func (m *mockLocationRepo) Delete(_ context.Context, yearID, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	l, ok := m.db.locations[id]
	if !ok || l.YearID != yearID {
		return repository.ErrNotFound
	}
	if m.db.collectionCount(id) > 0 {
		return repository.ErrReferenced
	}
	delete(m.db.locations, id)
	m.db.writes++
	return nil
}

func (m *mockLocationRepo) Reorder(_ context.Context, yearID string, indexes map[string]string, actorID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.reorderErr != nil {
		return m.db.reorderErr
	}
	// 先整体校验，保证要么全部写入要么全部不写
	for id := range indexes {
		if l, ok := m.db.locations[id]; !ok || l.YearID != yearID {
			return repository.ErrNotFound
		}
	}
	for id, idx := range indexes {
		l := m.db.locations[id]
		l.OrderIndex = idx
		l.UpdatedBy = &actorID
	}
	m.db.writes++
	return nil
}

// ── Mock CollectionRepository ──

type mockCollectionRepo struct{ db *mockDB }

func (m *mockCollectionRepo) slugTaken(yearID, slug, excludeID string) bool {
	for _, c := range m.db.collections {
		if c.YearID == yearID && c.Slug == slug && c.CollectionID != excludeID {
			return true
		}
	}
	return false
}

func (m *mockCollectionRepo) view(c *model.Collection) *model.Collection {
	cp := *c
	cp.AssetCount = m.db.assetCount(c.CollectionID)
	return &cp
}

func (m *mockCollectionRepo) Create(_ context.Context, col *model.Collection) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.slugTaken(col.YearID, col.Slug, "") {
		return repository.ErrDuplicate
	}
	if col.LocationID != nil {
		if _, ok := m.db.locations[*col.LocationID]; !ok {
			return repository.ErrReferenced
		}
	}
	if col.CollectionID == "" {
		col.CollectionID = m.db.nextID("col")
	}
	now := time.Now().UTC()
	col.CreatedAt, col.UpdatedAt = now, now
	cp := *col
	m.db.collections[col.CollectionID] = &cp
	m.db.writes++
	return nil
}

func (m *mockCollectionRepo) GetByID(_ context.Context, yearID, id string) (*model.Collection, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.collections[id]
	if !ok || c.YearID != yearID {
		return nil, repository.ErrNotFound
	}
	return m.view(c), nil
}

func (m *mockCollectionRepo) FindByID(_ context.Context, id string) (*model.Collection, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.collections[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.view(c), nil
}

func (m *mockCollectionRepo) FindBySlug(_ context.Context, yearID, slug string) (*model.Collection, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, c := range m.db.collections {
		if c.YearID == yearID && c.Slug == slug {
			return m.view(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCollectionRepo) ListByYear(_ context.Context, yearID string) ([]model.Collection, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.Collection
	for _, c := range m.db.collections {
		if c.YearID == yearID {
			out = append(out, *m.view(c))
		}
	}
	return out, nil
}

func (m *mockCollectionRepo) ListOrderIndexes(_ context.Context, yearID string) ([]string, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []string
	for _, c := range m.db.collections {
		if c.YearID == yearID {
			out = append(out, c.OrderIndex)
		}
	}
	return out, nil
}

func (m *mockCollectionRepo) Update(_ context.Context, col *model.Collection) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	existing, ok := m.db.collections[col.CollectionID]
	if !ok || existing.YearID != col.YearID {
		return repository.ErrNotFound
	}
	if m.slugTaken(col.YearID, col.Slug, col.CollectionID) {
		return repository.ErrDuplicate
	}
	col.UpdatedAt = time.Now().UTC()
	cp := *col
	cp.AssetCount = 0
	m.db.collections[col.CollectionID] = &cp
	m.db.writes++
	return nil
}

func (m *mockCollectionRepo) Delete(_ context.Context, yearID, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.collections[id]
	if !ok || c.YearID != yearID {
		return repository.ErrNotFound
	}
	for key, l := range m.db.links {
		if l.CollectionID == id {
			delete(m.db.links, key)
		}
	}
	delete(m.db.collections, id)
	m.db.writes++
	return nil
}

func (m *mockCollectionRepo) Reorder(_ context.Context, yearID string, indexes map[string]string, actorID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.reorderErr != nil {
		return m.db.reorderErr
	}
	for id := range indexes {
		if c, ok := m.db.collections[id]; !ok || c.YearID != yearID {
			return repository.ErrNotFound
		}
	}
	for id, idx := range indexes {
		c := m.db.collections[id]
		c.OrderIndex = idx
		c.UpdatedBy = &actorID
	}
	m.db.writes++
	return nil
}

// ── Mock AssetRepository ──

type mockAssetRepo struct{ db *mockDB }

func (m *mockAssetRepo) CreateAsset(_ context.Context, asset *model.Asset) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if asset.AssetID == "" {
		asset.AssetID = m.db.nextID("asset")
	}
	asset.CreatedAt = time.Now().UTC()
	cp := *asset
	m.db.assets[asset.AssetID] = &cp
	return nil
}

func (m *mockAssetRepo) GetAsset(_ context.Context, id string) (*model.Asset, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	a, ok := m.db.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssetRepo) ListByCollection(_ context.Context, collectionID string) ([]model.CollectionAsset, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.CollectionAsset
	for _, l := range m.db.links {
		if l.CollectionID != collectionID {
			continue
		}
		cp := *l
		if a, ok := m.db.assets[l.AssetID]; ok {
			ac := *a
			cp.Asset = &ac
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *mockAssetRepo) ListOrderIndexes(_ context.Context, collectionID string) ([]string, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []string
	for _, l := range m.db.links {
		if l.CollectionID == collectionID {
			out = append(out, l.OrderIndex)
		}
	}
	return out, nil
}

func (m *mockAssetRepo) Attach(_ context.Context, link *model.CollectionAsset) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	key := linkKey(link.CollectionID, link.AssetID)
	if _, ok := m.db.links[key]; ok {
		return repository.ErrDuplicate
	}
	if link.ID == "" {
		link.ID = m.db.nextID("link")
	}
	link.CreatedAt = time.Now().UTC()
	cp := *link
	cp.Asset = nil
	m.db.links[key] = &cp
	m.db.writes++
	return nil
}

func (m *mockAssetRepo) Detach(_ context.Context, collectionID, assetID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	key := linkKey(collectionID, assetID)
	if _, ok := m.db.links[key]; !ok {
		return repository.ErrNotFound
	}
	delete(m.db.links, key)
	m.db.writes++
	return nil
}

func (m *mockAssetRepo) Reorder(_ context.Context, collectionID string, indexes map[string]string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.reorderErr != nil {
		return m.db.reorderErr
	}
	for assetID := range indexes {
		if _, ok := m.db.links[linkKey(collectionID, assetID)]; !ok {
			return repository.ErrNotFound
		}
	}
	for assetID, idx := range indexes {
		m.db.links[linkKey(collectionID, assetID)].OrderIndex = idx
	}
	m.db.writes++
	return nil
}

// ── Mock AuditRepository ──

type mockAuditRepo struct{ db *mockDB }

func (m *mockAuditRepo) Append(_ context.Context, entry *model.AuditLog) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.appendErr != nil {
		return m.db.appendErr
	}
	if entry.ID == "" {
		entry.ID = m.db.nextID("audit")
	}
	m.db.audits = append(m.db.audits, *entry)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, filter repository.AuditFilter) ([]model.AuditLog, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []model.AuditLog
	for _, e := range m.db.audits {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// ── 事件记录器 ──

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.EntityChanged
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.EntityChanged) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) last() event.EntityChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return event.EntityChanged{}
	}
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
