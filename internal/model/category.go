package model

// Category 公告分类
type Category struct {
	ID    string `db:"id" json:"id"`
	Label string `db:"label" json:"label"`
	Emoji string `db:"emoji" json:"emoji"`
	Color string `db:"color" json:"color"`
	Order int    `db:"sort_order" json:"order"`
}

// CategoryInfo 展示用的分类元数据
type CategoryInfo struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// Info 返回展示用元数据
func (c Category) Info() CategoryInfo {
	return CategoryInfo{Label: c.Label, Emoji: c.Emoji, Color: c.Color}
}

// DefaultCategories 默认分类，分类表为空时写入
var DefaultCategories = []Category{
	{ID: "urgent", Label: "긴급공지", Emoji: "🔴", Color: "red", Order: 0},
	{ID: "update", Label: "업데이트", Emoji: "⚙️", Color: "yellow", Order: 1},
	{ID: "event", Label: "이벤트", Emoji: "🎁", Color: "pink", Order: 2},
	{ID: "announcement", Label: "안내", Emoji: "📌", Color: "blue", Order: 3},
}

// CategoryColors 可选的分类颜色
var CategoryColors = []string{"red", "yellow", "pink", "blue", "green", "purple", "indigo", "orange", "gray"}

// ValidCategoryColor 判断颜色是否在可选范围内
func ValidCategoryColor(color string) bool {
	for _, c := range CategoryColors {
		if c == color {
			return true
		}
	}
	return false
}
