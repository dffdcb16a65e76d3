package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestRepairJSONPassthrough(t *testing.T) {
	assert.Equal(t, `{"a":1}`, RepairJSON(`{"a":1}`))
	assert.Equal(t, `[1,2,3]`, RepairJSON("  [1,2,3]\n"))
}

func TestRepairJSONFencedBlock(t *testing.T) {
	text := "Here you go:\n```json\n{\"answer\": 4}\n```\nHope that helps!"
	assert.Equal(t, `{"answer": 4}`, RepairJSON(text))
}

func TestRepairJSONPlainFence(t *testing.T) {
	text := "```\n{\"answer\": 4}\n```"
	assert.Equal(t, `{"answer": 4}`, RepairJSON(text))
}

func TestRepairJSONEmbeddedObject(t *testing.T) {
	text := `The result is {"answer": 4, "note": "easy {math}"} as requested.`
	assert.Equal(t, `{"answer": 4, "note": "easy {math}"}`, RepairJSON(text))
}

func TestRepairJSONEmbeddedArray(t *testing.T) {
	text := `Values: [1, 2, 3] done.`
	assert.Equal(t, `[1, 2, 3]`, RepairJSON(text))
}

func TestRepairJSONFallbackWrap(t *testing.T) {
	out := RepairJSON("just plain prose, no JSON here")
	root := gjson.Parse(out)

	assert.True(t, root.IsObject())
	assert.Equal(t, "just plain prose, no JSON here", root.Get("response").String())
	assert.NotEmpty(t, root.Get("_note").String())
}

func TestRepairJSONStringAwareScanning(t *testing.T) {
	// The brace inside the string literal must not terminate the scan early.
	text := `prefix {"text": "a } inside"} suffix`
	assert.Equal(t, `{"text": "a } inside"}`, RepairJSON(text))
}
