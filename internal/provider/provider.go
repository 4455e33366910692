// Package provider implements the LLM provider abstraction: a uniform
// generate(task, prompt, temperature, max_tokens) -> string call across a
// mock, a local stub, and a real backend, plus the project-level model
// policy and the strict/non-strict credential-fallback resolution the job
// orchestrator drives.
package provider

import (
	"context"
	"fmt"
)

// Task identifies which policy slot a generate call is for.
type Task string

const (
	TaskTranslator     Task = "translator"
	TaskReviewer       Task = "reviewer"
	TaskSchemaResolver Task = "schema_resolver"
)

// Name identifies a provider implementation: one of {mock, openai, local}.
// "openai" is backed by an Anthropic-SDK implementation in this tree (see
// anthropic.go) rather than an actual OpenAI client; this abstraction names
// the shape of the provider slot, not the vendor behind it.
type Name string

const (
	ProviderMock   Name = "mock"
	ProviderOpenAI Name = "openai"
	ProviderLocal  Name = "local"
)

// DefaultModelByProvider is the model used for a task whose policy slot
// names a provider but no model.
var DefaultModelByProvider = map[Name]string{
	ProviderMock:   "mock-v1",
	ProviderOpenAI: "claude-3-5-haiku-20241022",
	ProviderLocal:  "local-stub-v1",
}

// LLMProvider generates plain-text output for a single task.
type LLMProvider interface {
	Generate(ctx context.Context, task Task, prompt string, temperature float64, maxTokens int) (string, error)
}

// TaskPolicy names which provider+model a task resolves to.
type TaskPolicy struct {
	Provider Name
	Model    string
}

// ModelPolicy is the project-level {translator, reviewer, schema_resolver}
// policy.
type ModelPolicy struct {
	Translator     TaskPolicy
	Reviewer       TaskPolicy
	SchemaResolver TaskPolicy
}

// ForTask returns the policy slot for task.
func (p ModelPolicy) ForTask(task Task) (TaskPolicy, error) {
	switch task {
	case TaskTranslator:
		return p.Translator, nil
	case TaskReviewer:
		return p.Reviewer, nil
	case TaskSchemaResolver:
		return p.SchemaResolver, nil
	default:
		return TaskPolicy{}, fmt.Errorf("unsupported model policy task: %s", task)
	}
}

// ToMap renders the policy as the {task: {provider, model}} shape the
// project config's model_policy key persists.
func (p ModelPolicy) ToMap() map[string]map[string]string {
	render := func(t TaskPolicy) map[string]string {
		return map[string]string{"provider": string(t.Provider), "model": t.Model}
	}
	return map[string]map[string]string{
		string(TaskTranslator):     render(p.Translator),
		string(TaskReviewer):       render(p.Reviewer),
		string(TaskSchemaResolver): render(p.SchemaResolver),
	}
}

// SecretStore looks up a named secret. No backend is implemented here;
// OS-keychain/secret-tool storage is out of scope, only the key-value
// lookup shape the resolver needs.
type SecretStore interface {
	GetSecret(name string) (string, bool)
}

// Factory builds a provider implementation for (name, model).
type Factory func(name Name, model string) LLMProvider

// DefaultFactory dispatches to the three built-in providers. apiKey is
// passed through to the "openai" provider only; it may be empty if no
// credential is configured (Resolve will have already fallen back
// to mock in that case when running non-strict).
func DefaultFactory(apiKey string) Factory {
	return func(name Name, model string) LLMProvider {
		switch name {
		case ProviderMock:
			return NewMockProvider(model)
		case ProviderLocal:
			return NewLocalProvider(model)
		case ProviderOpenAI:
			p, err := NewAnthropicProvider(apiKey, model)
			if err != nil {
				return failingProvider{err: err}
			}
			return p
		default:
			return failingProvider{err: fmt.Errorf("unknown provider: %s", name)}
		}
	}
}

type failingProvider struct{ err error }

func (f failingProvider) Generate(context.Context, Task, string, float64, int) (string, error) {
	return "", f.err
}

// Resolved is the outcome of resolving a task's policy to a concrete
// provider instance.
type Resolved struct {
	Task         Task
	ProviderName Name
	Model        string
	Provider     LLMProvider
	FallbackFrom Name // zero value when no fallback occurred
}

// Resolve turns a task's policy slot into a concrete provider. Only the
// "openai" provider requires a credential; when that credential is
// unavailable and strict is false, it silently falls back to mock,
// recording FallbackFrom. In strict mode it returns an error instead.
func Resolve(task Task, policy TaskPolicy, secrets SecretStore, factory Factory, strict bool) (Resolved, error) {
	name, model := policy.Provider, policy.Model
	if model == "" {
		model = DefaultModelByProvider[name]
	}

	if name == ProviderOpenAI {
		if _, ok := secrets.GetSecret("openai_api_key"); !ok {
			if strict {
				return Resolved{}, fmt.Errorf("provider %q requires a credential that is not configured", name)
			}
			fallbackFrom := name
			name = ProviderMock
			model = DefaultModelByProvider[ProviderMock]
			return Resolved{
				Task:         task,
				ProviderName: name,
				Model:        model,
				Provider:     factory(name, model),
				FallbackFrom: fallbackFrom,
			}, nil
		}
	}

	return Resolved{
		Task:         task,
		ProviderName: name,
		Model:        model,
		Provider:     factory(name, model),
	}, nil
}
