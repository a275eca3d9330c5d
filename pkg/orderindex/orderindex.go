// Package orderindex 计算同级实体的排序位置标记。
//
// 排序标记以十进制字符串持久化（如 "1.0"、"2.5"），按解析后的数值升序展示。
// 所有函数均为纯计算，不访问存储。
package orderindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// First 空同级集合的第一个位置
const First = "1.0"

// Floor 插入到首位时使用的下界（首个元素的标记不大于 0 时见 Before）
const Floor = "0.0"

// MaxAbs 显式排序标记允许的绝对值上限。
// 超过 2^53 后 float64 无法区分相邻整数，追加会得到重复标记
const MaxAbs = 1e15

var (
	ErrNotNumeric = errors.New("排序标记不是有限十进制数")
	ErrBadBounds  = errors.New("下界必须小于上界")
	ErrOutOfRange = errors.New("排序标记超出允许范围")
	// ErrNoGap 两个相邻标记之间已无法在当前精度下取得中点，需要整体重排
	ErrNoGap = errors.New("相邻排序标记之间已无可用间隙")
)

// now 可在测试中替换
var now = time.Now

// lastFallback 记录最近一次时间戳回退值，保证进程内单调递增
var lastFallback atomic.Int64

// Parse 将排序标记解析为有限浮点数
func Parse(index string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(index), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, index)
	}
	return v, nil
}

// Valid 判断排序标记能否参与数值排序
func Valid(index string) bool {
	_, err := Parse(index)
	return err == nil
}

// CheckRange 校验外部给出的排序标记：可解析且绝对值小于 MaxAbs
func CheckRange(index string) error {
	v, err := Parse(index)
	if err != nil {
		return err
	}
	if math.Abs(v) >= MaxAbs {
		return fmt.Errorf("%w: %q", ErrOutOfRange, index)
	}
	return nil
}

// NextAppend 计算追加到末尾的位置。
// last 为空表示没有同级元素，返回 "1.0"；last 无法解析时（历史遗留数据）
// 退回到基于当前时间戳的递增值，保证总能前进。
func NextAppend(last string) string {
	if strings.TrimSpace(last) == "" {
		return First
	}
	v, err := Parse(last)
	if err != nil {
		return timestampIndex()
	}
	next := v + 1
	if !(next > v) {
		// 历史数据超出精确整数范围时取下一个可表示的值，保证严格递增
		next = math.Nextafter(v, math.Inf(1))
	}
	return strconv.FormatFloat(next, 'f', 1, 64)
}

// Before 返回排到 first 之前时使用的下界：first 大于 0 时为 Floor，否则为 first-1
func Before(first string) string {
	v, err := Parse(first)
	if err != nil || v > 0 {
		return Floor
	}
	return format(v - 1)
}

func timestampIndex() string {
	for {
		prev := lastFallback.Load()
		next := now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if lastFallback.CompareAndSwap(prev, next) {
			return strconv.FormatInt(next, 10) + ".0"
		}
	}
}

// InsertBetween 返回 lower 与 upper 的算术中点。
// 在同一对邻居之间反复插入会使间隙趋近于零；一旦中点在 float64 精度下
// 不再严格位于两者之间，返回 ErrNoGap，由调用方决定是否整体重排。
func InsertBetween(lower, upper string) (string, error) {
	lo, err := Parse(lower)
	if err != nil {
		return "", err
	}
	hi, err := Parse(upper)
	if err != nil {
		return "", err
	}
	if !(lo < hi) {
		return "", fmt.Errorf("%w: %s >= %s", ErrBadBounds, lower, upper)
	}

	mid := lo + (hi-lo)/2
	out := format(mid)
	// 以渲染后的字符串为准判断，确保持久化值仍严格位于区间内
	parsed, _ := Parse(out)
	if !(lo < parsed && parsed < hi) {
		return "", fmt.Errorf("%w: (%s, %s)", ErrNoGap, lower, upper)
	}
	return out, nil
}

// SequentialReindex 按输入顺序分配 "1.0", "2.0", "3.0", ...
func SequentialReindex(orderedIDs []string) map[string]string {
	out := make(map[string]string, len(orderedIDs))
	for i, id := range orderedIDs {
		out[id] = strconv.FormatFloat(float64(i+1), 'f', 1, 64)
	}
	return out
}

// Less 展示顺序比较：可解析的标记按数值升序，且排在不可解析的标记之前；
// 不可解析的标记之间按字符串比较。
func Less(a, b string) bool {
	va, errA := Parse(a)
	vb, errB := Parse(b)
	switch {
	case errA == nil && errB == nil:
		return va < vb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// Sort 按展示顺序稳定排序，key 取出元素的排序标记
func Sort[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(key(items[i]), key(items[j]))
	})
}

// Last 返回展示顺序中的最后一个标记，空集合返回 ""
func Last(indexes []string) string {
	last := ""
	for i, idx := range indexes {
		if i == 0 || Less(last, idx) {
			last = idx
		}
	}
	return last
}

func format(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
