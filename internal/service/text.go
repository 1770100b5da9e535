package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// plainText 提取HTML内容的纯文本，只用于搜索
func plainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
