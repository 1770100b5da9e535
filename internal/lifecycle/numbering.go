package lifecycle

import (
	"sort"

	"noticeboard/internal/model"
)

// DisplayNumbers 按创建时间升序为当前筛选结果编号 1..N。
// 编号与列表的排序方向无关。
func DisplayNumbers(filtered []model.Notice) map[string]int {
	ordered := make([]*model.Notice, len(filtered))
	for i := range filtered {
		ordered[i] = &filtered[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	numbers := make(map[string]int, len(ordered))
	for i, n := range ordered {
		numbers[n.ID] = i + 1
	}
	return numbers
}
