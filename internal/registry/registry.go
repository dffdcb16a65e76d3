package registry

// Registry resolves requested model names against the static alias table.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	aliases      map[string]string
	models       []ModelInfo
	defaultModel string
}

// New builds the registry. defaultModel, when non-empty, is used as the
// fallback for names the alias table does not know; it is itself resolved
// through the table so aliases are accepted here too.
func New(defaultModel string) *Registry {
	aliases := aliasTable()
	if resolved, ok := aliases[defaultModel]; ok {
		defaultModel = resolved
	}

	models := claudeModels()
	models = append(models, aliasModels()...)

	return &Registry{
		aliases:      aliases,
		models:       models,
		defaultModel: defaultModel,
	}
}

// Resolve maps a requested model name to the concrete identifier handed to
// the CLI. Unknown names fall through to the configured default model; when
// no default is configured the second return value is false.
func (r *Registry) Resolve(name string) (string, bool) {
	if resolved, ok := r.aliases[name]; ok {
		return resolved, true
	}
	if r.defaultModel != "" {
		return r.defaultModel, true
	}
	return "", false
}

// Models returns the advertised model list for the /v1/models endpoint.
func (r *Registry) Models() []ModelInfo {
	out := make([]ModelInfo, len(r.models))
	copy(out, r.models)
	return out
}
