package policy

import (
	"fmt"
	"strings"
)

// DefaultID identifies the JSON digest policy used when nothing else is configured.
const DefaultID = "digest"

// Policy captures the fixed system instruction and the wrapper applied to each user turn.
type Policy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	System      string `json:"system"`
	// TurnFormat 用于包装当前用户输入，依次接收用户名与消息两个 %q 参数。
	TurnFormat string `json:"turnFormat"`
}

// WrapTurn renders the current user turn. Policies without a TurnFormat pass the message through.
func (p Policy) WrapTurn(userID, message string) string {
	if strings.TrimSpace(p.TurnFormat) == "" {
		return message
	}
	return fmt.Sprintf(p.TurnFormat, userID, message)
}

// Seed provides the built-in policies.
func Seed() []Policy {
	return []Policy{
		{
			ID:          DefaultID,
			Name:        "JSON digest",
			Description: "把用户输入整理为 topic / summary / fun_fact 三个字段的 JSON 对象。",
			System: strings.TrimSpace(`
You are a JSON API. Always respond with a JSON object in this format:
{
  "topic": string,
  "summary": string,
  "fun_fact": string
}
No extra text, markdown, or explanations.`),
			TurnFormat: "Message from %q: %q\nConvert this into a JSON object with a topic, summary, and fun fact.",
		},
		{
			ID:          "digest-brief",
			Name:        "Brief JSON digest",
			Description: "与 digest 相同的结构，但要求 summary 控制在一句话以内。",
			System: strings.TrimSpace(`
You are a JSON API. Always respond with a single JSON object with exactly these string fields:
"topic", "summary" (one sentence), "fun_fact".
Never wrap the object in markdown and never add commentary.`),
			TurnFormat: "Message from %q: %q\nReturn the JSON object now.",
		},
	}
}
