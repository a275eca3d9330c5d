package service

import (
	apperrors "catalog-cms/pkg/errors"
)

// validatePermutation orderedIDs 必须恰好是当前同级 id 集合的一个排列
func validatePermutation(current, orderedIDs []string) error {
	if len(orderedIDs) != len(current) {
		return apperrors.Validationf("orderedIds", "需要 %d 个 id，实际 %d 个", len(current), len(orderedIDs))
	}
	members := make(map[string]bool, len(current))
	for _, id := range current {
		members[id] = false
	}
	for _, id := range orderedIDs {
		seen, ok := members[id]
		if !ok {
			return apperrors.Validationf("orderedIds", "%q 不属于当前同级集合", id)
		}
		if seen {
			return apperrors.Validationf("orderedIds", "%q 重复出现", id)
		}
		members[id] = true
	}
	return nil
}

// sortPayload 排序事件的审计载荷
func sortPayload(orderedIDs []string) map[string]any {
	return map[string]any{"orderedIds": orderedIDs}
}
