package service

import (
	"testing"

	apperrors "catalog-cms/pkg/errors"
	"catalog-cms/pkg/orderindex"
)

func TestValidatePermutation(t *testing.T) {
	current := []string{"a", "b", "c"}

	if err := validatePermutation(current, []string{"c", "a", "b"}); err != nil {
		t.Errorf("合法排列不应报错: %v", err)
	}
	if err := validatePermutation(nil, []string{}); err != nil {
		t.Errorf("空集合的空排列合法: %v", err)
	}

	for _, ordered := range [][]string{
		{"a", "b"},
		{"a", "b", "c", "d"},
		{"a", "a", "b"},
		{"a", "b", "x"},
	} {
		err := validatePermutation(current, ordered)
		assertAppError(t, err, apperrors.CodeValidation, "orderedIds")
	}
}

func TestNeighboursAndPositionBetween(t *testing.T) {
	ids := []string{"a", "b"}
	idx := []string{"1.0", "2.0"}
	at := func(i int) string { return idx[i] }

	tests := []struct {
		name    string
		ids     []string
		afterID string
		want    string
	}{
		{"移到首位", ids, "", "0.5"},
		{"插入中间", ids, "a", "1.5"},
		{"移到末尾", ids, "b", "3.0"},
		{"没有同级", nil, "", orderindex.First},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper, ok := neighbours(tt.ids, at, tt.afterID)
			if !ok {
				t.Fatalf("afterID=%q 应能找到", tt.afterID)
			}
			got, err := positionBetween(lower, upper)
			if err != nil {
				t.Fatalf("positionBetween 失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("期望 %s，实际 %s", tt.want, got)
			}
		})
	}

	if _, _, ok := neighbours(ids, at, "x"); ok {
		t.Error("未知 afterID 应返回 false")
	}

	_, err := positionBetween("1.0", "1.0000000000000002")
	assertAppError(t, err, apperrors.CodeConflict, "orderIndex")
}

func TestNeighbours_FirstIndexNotPositive(t *testing.T) {
	tests := []struct {
		name  string
		first string
		want  string
	}{
		{"首个为 0", "0", "-0.5"},
		{"首个为负数", "-3", "-3.5"},
		{"首个为正小数", "0.5", "0.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := []string{tt.first, "1.0"}
			lower, upper, _ := neighbours([]string{"a", "b"}, func(i int) string { return idx[i] }, "")
			got, err := positionBetween(lower, upper)
			if err != nil {
				t.Fatalf("移到首位应成功: %v", err)
			}
			if got != tt.want {
				t.Errorf("期望 %s，实际 %s", tt.want, got)
			}
		})
	}
}
