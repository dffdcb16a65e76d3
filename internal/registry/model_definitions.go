// Package registry provides the static model alias table the server
// advertises and resolves against. The table is built once at process start
// and never changes: resolution is a pure lookup with an optional default
// fallback for unknown names.
package registry

// Canonical Claude Code model identifiers.
const (
	ModelSonnet = "claude-3-5-sonnet-20241022"
	ModelHaiku  = "claude-3-5-haiku-20241022"
)

// ModelInfo describes one entry served by the /v1/models endpoint.
type ModelInfo struct {
	ID          string `json:"id"`
	Object      string `json:"object"`
	Created     int64  `json:"created"`
	OwnedBy     string `json:"owned_by"`
	DisplayName string `json:"display_name,omitempty"`
}

// claudeModels returns the canonical Claude model definitions.
func claudeModels() []ModelInfo {
	return []ModelInfo{
		{
			ID:          ModelSonnet,
			Object:      "model",
			Created:     1729555200, // 2024-10-22
			OwnedBy:     "anthropic",
			DisplayName: "Claude 3.5 Sonnet",
		},
		{
			ID:          ModelHaiku,
			Object:      "model",
			Created:     1729555200, // 2024-10-22
			OwnedBy:     "anthropic",
			DisplayName: "Claude 3.5 Haiku",
		},
	}
}

// aliasModels returns the OpenAI-style aliases advertised for client
// compatibility. Each resolves to a canonical Claude model.
func aliasModels() []ModelInfo {
	return []ModelInfo{
		{
			ID:      "gpt-4",
			Object:  "model",
			Created: 1729555200,
			OwnedBy: "claude-code-api",
		},
		{
			ID:      "gpt-4-turbo",
			Object:  "model",
			Created: 1729555200,
			OwnedBy: "claude-code-api",
		},
		{
			ID:      "gpt-3.5-turbo",
			Object:  "model",
			Created: 1729555200,
			OwnedBy: "claude-code-api",
		},
	}
}

// aliasTable maps every advertised name, alias and canonical alike, to the
// concrete model identifier handed to the CLI.
func aliasTable() map[string]string {
	return map[string]string{
		"gpt-4":             ModelSonnet,
		"gpt-4-turbo":       ModelSonnet,
		"gpt-3.5-turbo":     ModelHaiku,
		"claude-3-5-sonnet": ModelSonnet,
		"claude-3-5-haiku":  ModelHaiku,
		ModelSonnet:         ModelSonnet,
		ModelHaiku:          ModelHaiku,
	}
}
