package openai

import (
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"
)

// Usage holds the token counters reported in the response. Totals are always
// prompt + completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// responseTemplate is the OpenAI chat.completion document skeleton. Every
// response carries exactly one choice.
const responseTemplate = `{"id":"","object":"chat.completion","created":0,"model":"","choices":[{"index":0,"message":{"role":"assistant","content":""},"finish_reason":"stop"}],"usage":{"prompt_tokens":0,"completion_tokens":0,"total_tokens":0}}`

// BuildResponse assembles the chat.completion JSON body. model echoes the
// name the client requested, not the resolved internal identifier.
func BuildResponse(model, content string, usage Usage) []byte {
	out := responseTemplate
	out, _ = sjson.Set(out, "id", "chatcmpl-"+uuid.NewString())
	out, _ = sjson.Set(out, "created", time.Now().Unix())
	out, _ = sjson.Set(out, "model", model)
	out, _ = sjson.Set(out, "choices.0.message.content", content)
	out, _ = sjson.Set(out, "usage.prompt_tokens", usage.PromptTokens)
	out, _ = sjson.Set(out, "usage.completion_tokens", usage.CompletionTokens)
	out, _ = sjson.Set(out, "usage.total_tokens", usage.PromptTokens+usage.CompletionTokens)
	return []byte(out)
}
