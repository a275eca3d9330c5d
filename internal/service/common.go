package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"catalog-cms/internal/dto"
	"catalog-cms/internal/event"
	"catalog-cms/internal/model"
	"catalog-cms/internal/repository"
	apperrors "catalog-cms/pkg/errors"
	"catalog-cms/pkg/orderindex"
)

// internalErr 记录非预期的存储错误并包装为 INTERNAL
func internalErr(logger *zap.Logger, msg string, err error, fields ...zap.Field) error {
	logger.Error(msg, append(fields, zap.Error(err))...)
	return apperrors.Internal(err)
}

// requireYear 年份不存在时返回 NOT_FOUND
func requireYear(ctx context.Context, d Deps, yearID string) (*model.Year, error) {
	year, err := d.Repo.Year.GetByID(ctx, yearID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("年份不存在")
		}
		return nil, internalErr(d.Logger, "查询年份失败", err, zap.String("year_id", yearID))
	}
	return year, nil
}

// publish 发布变更事件；未配置事件总线时忽略
func publish(ctx context.Context, d Deps, actor model.Actor, evt event.EntityChanged) {
	if d.Publisher == nil {
		return
	}
	evt.Actor = actor.ID
	evt.ActorType = actor.Type
	evt.RequestID = actor.RequestID
	d.Publisher.Publish(ctx, evt)
}

// explicitOrderIndex 校验调用方显式给出的排序标记
func explicitOrderIndex(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", apperrors.Validation("orderIndex", "排序标记不能为空")
	}
	if err := orderindex.CheckRange(v); err != nil {
		if errors.Is(err, orderindex.ErrOutOfRange) {
			return "", apperrors.Validationf("orderIndex", "排序标记 %q 超出允许范围（绝对值须小于 1e15）", raw)
		}
		return "", apperrors.Validationf("orderIndex", "排序标记 %q 不是有限十进制数", raw)
	}
	return v, nil
}

// cleanText 去除首尾空白，空串视为未设置
func cleanText(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func ptrValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// trackString 值不同时记录变更并返回 true
func trackString(changes dto.Changes, field, from, to string) bool {
	if from == to {
		return false
	}
	changes[field] = dto.Change{From: from, To: to}
	return true
}

func trackPtr(changes dto.Changes, field string, from, to *string) bool {
	if samePtr(from, to) {
		return false
	}
	changes[field] = dto.Change{From: ptrValue(from), To: ptrValue(to)}
	return true
}

// neighbours 计算移动到 afterID 之后时的上下界。
// siblings 已按展示顺序排列且不含被移动的实体；afterID 为空表示移到首位。
func neighbours(siblings []string, indexOf func(i int) string, afterID string) (lower, upper string, ok bool) {
	if afterID == "" {
		lower = orderindex.Floor
		if len(siblings) > 0 {
			upper = indexOf(0)
			lower = orderindex.Before(upper)
		}
		return lower, upper, true
	}
	for i, id := range siblings {
		if id != afterID {
			continue
		}
		lower = indexOf(i)
		if i+1 < len(siblings) {
			upper = indexOf(i + 1)
		}
		return lower, upper, true
	}
	return "", "", false
}

// positionBetween 根据上下界计算新的排序标记；没有上界时追加
func positionBetween(lower, upper string) (string, error) {
	if upper == "" {
		if lower == orderindex.Floor {
			return orderindex.First, nil
		}
		return orderindex.NextAppend(lower), nil
	}
	idx, err := orderindex.InsertBetween(lower, upper)
	switch {
	case err == nil:
		return idx, nil
	case errors.Is(err, orderindex.ErrNoGap):
		return "", apperrors.Conflict("orderIndex", "相邻位置已无法插入，请先执行整体重排")
	default:
		// 相邻标记重复（并发追加）或无法解析
		return "", apperrors.Conflict("orderIndex", "相邻排序标记重复或无效，无法确定插入位置，请先执行整体重排")
	}
}
