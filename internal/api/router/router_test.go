package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catalog-cms/config"
	"catalog-cms/internal/api/handler"
	"catalog-cms/internal/backend"
	"catalog-cms/internal/event"
	"catalog-cms/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	bus    *event.Bus
}

// newTestServer 直连 SQL 后端（内存 SQLite）+ 真实 Service，无 Redis
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{
		Runtime: config.RuntimeConfig{Env: "production"},
		SQLite:  config.SQLiteConfig{URL: ":memory:"},
		Server:  config.ServerConfig{MaxBodyBytes: 1 << 20},
	}
	store, err := backend.Open(cfg, logger)
	require.NoError(t, err)

	bus := event.NewBus(logger)
	bus.Subscribe("audit", service.NewAuditRecorder(store.Repository.Audit, logger).Handle)
	t.Cleanup(func() {
		bus.Wait()
		_ = store.Close()
	})

	svc := service.NewService(cfg, store.Repository, bus, nil, logger)
	return &testServer{engine: Setup(cfg, handler.NewHandler(svc), store, nil, logger), bus: bus}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "editor-1")
	req.Header.Set("X-Request-ID", "catalog-wf-1")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// data 解析成功响应中的 data 字段
func data(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.Equal(t, 0, env.Code)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

type listData[T any] struct {
	List []T `json:"list"`
}

type location struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	OrderIndex      string `json:"orderIndex"`
	CollectionCount int64  `json:"collectionCount"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "catalog-wf-1", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCatalogWorkflow(t *testing.T) {
	s := newTestServer(t)

	// 年份
	w := s.do(t, "POST", "/api/v1/years", map[string]string{"label": "2024"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var year struct {
		ID string `json:"id"`
	}
	data(t, w, &year)
	base := "/api/v1/years/" + year.ID

	// 地点：Kyoto 1.0, Osaka 2.0
	var kyoto, osaka location
	w = s.do(t, "POST", base+"/locations", map[string]string{"name": "Kyoto"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data(t, w, &kyoto)
	assert.Equal(t, "kyoto-24", kyoto.Slug)
	assert.Equal(t, "1.0", kyoto.OrderIndex)

	w = s.do(t, "POST", base+"/locations", map[string]string{"name": "Osaka"})
	require.Equal(t, http.StatusCreated, w.Code)
	data(t, w, &osaka)
	assert.Equal(t, "2.0", osaka.OrderIndex)

	// slug 不合法
	w = s.do(t, "POST", base+"/locations", map[string]string{"name": "Kyoto!!", "slug": "Kyoto"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"slug"`)

	// 整体重排
	w = s.do(t, "POST", base+"/locations/reorder", map[string][]string{"orderedIds": {osaka.ID, kyoto.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reordered listData[location]
	data(t, w, &reordered)
	require.Len(t, reordered.List, 2)
	assert.Equal(t, osaka.ID, reordered.List[0].ID)
	assert.Equal(t, "1.0", reordered.List[0].OrderIndex)
	assert.Equal(t, "2.0", reordered.List[1].OrderIndex)

	// 非排列
	w = s.do(t, "POST", base+"/locations/reorder", map[string][]string{"orderedIds": {osaka.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 合集挂到 Kyoto 后删除 Kyoto 被拒绝
	w = s.do(t, "POST", base+"/collections", map[string]string{"title": "Temples", "locationId": kyoto.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, "POST", base+"/collections", map[string]string{"title": "Gardens", "locationId": kyoto.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, "DELETE", base+"/locations/"+kyoto.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "HAS_COLLECTIONS")

	w = s.do(t, "GET", base+"/locations", nil)
	var list listData[location]
	data(t, w, &list)
	require.Len(t, list.List, 2)
	assert.Equal(t, int64(2), list.List[1].CollectionCount)

	// 移动 Kyoto 到首位
	w = s.do(t, "POST", base+"/locations/"+kyoto.ID+"/move", map[string]interface{}{"afterId": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var moved location
	data(t, w, &moved)
	assert.Equal(t, "0.5", moved.OrderIndex)

	// 导出
	w = s.do(t, "GET", base+"/export", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "catalog_2024.xlsx")

	// 审计日志（订阅者异步写入）
	s.bus.Wait()
	w = s.do(t, "GET", "/api/v1/audit-logs?entityType=location&entityId="+kyoto.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var audits listData[struct {
		Actor     string `json:"actor"`
		Action    string `json:"action"`
		RequestID string `json:"requestId"`
	}]
	data(t, w, &audits)
	require.NotEmpty(t, audits.List)
	assert.Equal(t, "sort", audits.List[0].Action)
	assert.Equal(t, "editor-1", audits.List[0].Actor)
	assert.Equal(t, "catalog-wf-1", audits.List[0].RequestID)

	w = s.do(t, "GET", "/api/v1/audit-logs?entityType=planet", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "GET", "/api/v1/years/missing/locations", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	w = s.do(t, "POST", "/api/v1/locations/missing/reorder", map[string][]string{"orderedIds": {}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
