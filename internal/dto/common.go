package dto

import (
	"encoding/json"
	"time"
)

// ── 通用 DTO ──

// OptionalString 三态字段：未出现 / 显式 null / 具体值。
// 用于 PATCH 语义的更新请求，只有出现在请求体中的字段才会被修改。
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// UnmarshalJSON 字段出现在请求体中时才会被调用
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		o.Value = ""
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Ptr 显式 null 返回 nil
func (o OptionalString) Ptr() *string {
	if o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// SetTo 构造一个已赋值的三态字段（测试与内部调用使用）
func SetTo(v string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

// SetNull 构造一个显式 null 的三态字段
func SetNull() OptionalString {
	return OptionalString{Set: true, Null: true}
}

// Change 单个字段的变更前后值
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Changes 字段名 → 变更
type Changes map[string]Change

// ReorderRequest 整体重排请求：按新顺序给出全部同级 id
type ReorderRequest struct {
	OrderedIDs []string `json:"orderedIds"`
}

// MoveRequest 手动移动请求：afterId 为空表示移到首位
type MoveRequest struct {
	AfterID *string `json:"afterId"`
}

// FormatTime 统一的时间输出格式（UTC ISO-8601）
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
