package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
	apperrors "catalog-cms/pkg/errors"
	"catalog-cms/pkg/orderindex"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 按年份导出 Excel (.xlsx)，地点与合集各一个 Sheet
//   - 行按展示顺序（解析后的排序标记）排列，与编辑界面一致
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportYear 返回 buf（Excel 内容）, filename（建议文件名）, error
	ExportYear(ctx context.Context, yearID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

const (
	sheetLocations   = "地点"
	sheetCollections = "合集"
)

func (s *exportService) ExportYear(ctx context.Context, yearID string) (*bytes.Buffer, string, error) {
	// 1. 查询年份
	year, err := s.repo.Year.GetByID(ctx, yearID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", apperrors.NotFound("年份不存在")
		}
		return nil, "", internalErr(s.logger, "查询年份失败", err, zap.String("year_id", yearID))
	}

	// 2. 查询地点与合集并按展示顺序排列
	locs, err := s.repo.Location.ListByYear(ctx, yearID)
	if err != nil {
		return nil, "", internalErr(s.logger, "列出地点失败", err, zap.String("year_id", yearID))
	}
	orderindex.Sort(locs, func(l model.Location) string { return l.OrderIndex })

	cols, err := s.repo.Collection.ListByYear(ctx, yearID)
	if err != nil {
		return nil, "", internalErr(s.logger, "列出合集失败", err, zap.String("year_id", yearID))
	}
	orderindex.Sort(cols, func(c model.Collection) string { return c.OrderIndex })

	locationNames := make(map[string]string, len(locs))
	for _, l := range locs {
		locationNames[l.LocationID] = l.Name
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	locRows := make([][]interface{}, 0, len(locs))
	for _, l := range locs {
		locRows = append(locRows, []interface{}{l.OrderIndex, l.Slug, l.Name, l.CollectionCount})
	}
	if err := writeSheet(f, sheetLocations, headerStyle,
		[]string{"排序", "Slug", "名称", "合集数"}, []float64{10, 28, 30, 10}, locRows); err != nil {
		return nil, "", internalErr(s.logger, "写入地点 Sheet 失败", err)
	}

	colRows := make([][]interface{}, 0, len(cols))
	for _, c := range cols {
		location := "-"
		if c.LocationID != nil {
			location = locationNames[*c.LocationID]
		}
		colRows = append(colRows, []interface{}{c.OrderIndex, c.Slug, c.Title, location, c.Status, c.AssetCount})
	}
	if err := writeSheet(f, sheetCollections, headerStyle,
		[]string{"排序", "Slug", "标题", "地点", "状态", "资源数"}, []float64{10, 28, 30, 20, 12, 10}, colRows); err != nil {
		return nil, "", internalErr(s.logger, "写入合集 Sheet 失败", err)
	}

	if idx, err := f.GetSheetIndex(sheetLocations); err == nil {
		f.SetActiveSheet(idx)
	}
	// 删除默认 Sheet1
	_ = f.DeleteSheet("Sheet1")

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", internalErr(s.logger, "写入 Excel 失败", err)
	}

	filename := fmt.Sprintf("catalog_%s.xlsx", year.Label)
	return buf, filename, nil
}

// writeSheet 创建 Sheet，写入表头与数据行
func writeSheet(f *excelize.File, name string, headerStyle int, headers []string, widths []float64, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, w := range widths {
		col := colName(i)
		if err := f.SetColWidth(name, col, col, w); err != nil {
			return err
		}
	}

	for i, h := range headers {
		if err := f.SetCellValue(name, cell(colName(i), 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(name, "A1", cell(colName(len(headers)-1), 1), headerStyle); err != nil {
		return err
	}

	for r, values := range rows {
		for c, v := range values {
			if err := f.SetCellValue(name, cell(colName(c), r+2), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
