package openai

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestBuildResponseShape(t *testing.T) {
	body := BuildResponse("gpt-4", "The answer is 4.", Usage{PromptTokens: 12, CompletionTokens: 5})
	root := gjson.ParseBytes(body)

	assert.True(t, strings.HasPrefix(root.Get("id").String(), "chatcmpl-"))
	assert.Equal(t, "chat.completion", root.Get("object").String())
	assert.Equal(t, "gpt-4", root.Get("model").String())
	assert.InDelta(t, time.Now().Unix(), root.Get("created").Int(), 5)

	choices := root.Get("choices").Array()
	require.Len(t, choices, 1)
	assert.Equal(t, int64(0), choices[0].Get("index").Int())
	assert.Equal(t, "assistant", choices[0].Get("message.role").String())
	assert.Equal(t, "The answer is 4.", choices[0].Get("message.content").String())
	assert.Equal(t, "stop", choices[0].Get("finish_reason").String())

	assert.Equal(t, int64(12), root.Get("usage.prompt_tokens").Int())
	assert.Equal(t, int64(5), root.Get("usage.completion_tokens").Int())
	assert.Equal(t, int64(17), root.Get("usage.total_tokens").Int())
}

func TestBuildResponseUniqueIDs(t *testing.T) {
	a := gjson.ParseBytes(BuildResponse("gpt-4", "x", Usage{})).Get("id").String()
	b := gjson.ParseBytes(BuildResponse("gpt-4", "x", Usage{})).Get("id").String()
	assert.NotEqual(t, a, b)
}

func TestBuildResponseEscapesContent(t *testing.T) {
	body := BuildResponse("gpt-4", "line1\n\"quoted\"", Usage{})
	root := gjson.ParseBytes(body)

	require.True(t, root.IsObject(), "response must stay valid JSON")
	assert.Equal(t, "line1\n\"quoted\"", root.Get("choices.0.message.content").String())
}
