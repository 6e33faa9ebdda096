package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract 从列表内容中取出地址，每行一个
// HTML 页面只保留文本内容
func Extract(body string) []string {
	text := strings.ReplaceAll(body, "\ufeff", "")

	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			text = doc.Text()
		}
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "://"); i >= 0 {
			line = line[i+len("://"):]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		out = append(out, fields[0])
	}
	return out
}
