// Package persona maps conversation use cases to the system prompts that
// scope the upstream model. Prompts are data, loaded once at startup.
package persona

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"chatgate/internal/domain"
)

// Registry is an immutable use-case -> system-prompt lookup. Construct it
// with NewRegistry so the enumerated set is known to be fully covered.
type Registry struct {
	prompts map[domain.UseCase]string
}

// NewRegistry validates that every enumerated use case (Default included)
// has a prompt. All gaps are reported at once so a broken persona file
// fails startup with the complete list.
func NewRegistry(prompts map[domain.UseCase]string) (*Registry, error) {
	var result *multierror.Error
	for _, uc := range domain.AllUseCases() {
		if prompts[uc] == "" {
			result = multierror.Append(result, fmt.Errorf("use case %q has no persona prompt", uc))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	copied := make(map[domain.UseCase]string, len(prompts))
	for uc, prompt := range prompts {
		copied[uc] = prompt
	}
	return &Registry{prompts: copied}, nil
}

// PromptFor returns the system prompt for a use case. Unknown tags resolve
// to the Default persona, never an error.
func (r *Registry) PromptFor(useCase domain.UseCase) string {
	if prompt, ok := r.prompts[useCase]; ok {
		return prompt
	}
	return r.prompts[domain.UseCaseDefault]
}
