// Package catalog 课程目录辅助：按课程名称归类考试类别。
// 仅用于展示与筛选，与时间块排布无关。
package catalog

import "strings"

// Classifier 按配置的考试类别标签对课程名称归类
type Classifier struct {
	labels   []string
	fallback string
}

// NewClassifier labels 按优先级排列；fallback 为未匹配时的默认类别
func NewClassifier(labels []string, fallback string) *Classifier {
	cleaned := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l != "" {
			cleaned = append(cleaned, l)
		}
	}
	return &Classifier{labels: cleaned, fallback: fallback}
}

// Classify 先做前缀匹配（"TYT Matematik"），再做整词匹配（"Matematik (AYT)"），
// 均不区分大小写；都未命中返回默认类别。
func (c *Classifier) Classify(courseName string) string {
	name := strings.ToUpper(strings.TrimSpace(courseName))
	if name == "" {
		return c.fallback
	}

	for _, l := range c.labels {
		if strings.HasPrefix(name, strings.ToUpper(l)) {
			return l
		}
	}

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '(' || r == ')' || r == '/' || r == '.' || r == ','
	})
	for _, l := range c.labels {
		upper := strings.ToUpper(l)
		for _, w := range words {
			if w == upper {
				return l
			}
		}
	}
	return c.fallback
}

// Labels 全部类别（含默认类别），用于前端筛选项
func (c *Classifier) Labels() []string {
	out := make([]string, 0, len(c.labels)+1)
	out = append(out, c.labels...)
	return append(out, c.fallback)
}
