package resolver

import (
	"fmt"
	"strings"

	"github.com/roach88/genesis/internal/element"
)

// SchemaName names the response schema for structured-output endpoints.
const SchemaName = "combination_result"

// Preamble is the fixed rule text sent with every generative request. It
// covers the progression tiers, the output language and tone, and the
// response shape.
func Preamble() string {
	eras := element.Eras()
	names := make([]string, len(eras))
	for i, e := range eras {
		names[i] = string(e)
	}
	types := element.Types()
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	var b strings.Builder
	b.WriteString("你是「创世协议」合成沙盒的物理法则。玩家把两种元素放在一起，你来判断它们能否发生反应，以及会产生什么。\n\n")
	b.WriteString("规则：\n")
	fmt.Fprintf(&b, "1. 科技树按十个纪元推进：%s。结果应当与两种输入所处的纪元相称，最多向前推进一个纪元。\n", strings.Join(names, " → "))
	b.WriteString("2. 结果必须合乎直觉，或者有科学、历史、文化上的依据；两者之间没有合理联系时，判定为不反应。\n")
	b.WriteString("3. 所有文字使用简体中文。元素名称简短，不超过六个字；描述只有一句话；旁白只有一句话，语气冷静，带一点科幻感。\n")
	fmt.Fprintf(&b, "4. 只输出符合给定 JSON 结构的对象。success 表示是否反应；flavorText 是旁白；反应成功时 newElement 给出 name、emoji、description 与 type，type 只能取 %s 之一；不反应时 newElement 为 null。\n", strings.Join(typeNames, "、"))
	return b.String()
}

// ResponseSchema is the JSON schema of a capability response, in the strict
// structured-output dialect (every property required, no extras).
func ResponseSchema() map[string]any {
	types := element.Types()
	enum := make([]any, len(types))
	for i, t := range types {
		enum[i] = string(t)
	}

	candidate := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"emoji":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"type":        map[string]any{"type": "string", "enum": enum},
		},
		"required":             []any{"name", "emoji", "description", "type"},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"success":    map[string]any{"type": "boolean"},
			"flavorText": map[string]any{"type": "string"},
			"newElement": map[string]any{
				"anyOf": []any{candidate, map[string]any{"type": "null"}},
			},
		},
		"required":             []any{"success", "flavorText", "newElement"},
		"additionalProperties": false,
	}
}
