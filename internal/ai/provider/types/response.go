package types

import "strings"

// ResultPart 响应中的一个片段，Text 与 ImageDataURI 二选一
type ResultPart struct {
	Text         string
	ImageDataURI string
}

// IsImage 判断是否为图片片段
func (p ResultPart) IsImage() bool {
	return p.ImageDataURI != ""
}

// GenerateResult 生成结果，Parts 保持 Provider 返回的顺序
type GenerateResult struct {
	Model string
	Parts []ResultPart
}

// Text 拼接所有文本片段
func (r *GenerateResult) Text() string {
	if r == nil {
		return ""
	}
	var texts []string
	for _, p := range r.Parts {
		if !p.IsImage() && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// Empty 判断是否没有任何内容
func (r *GenerateResult) Empty() bool {
	if r == nil {
		return true
	}
	for _, p := range r.Parts {
		if p.IsImage() || strings.TrimSpace(p.Text) != "" {
			return false
		}
	}
	return true
}
