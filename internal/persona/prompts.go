package persona

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"chatgate/internal/domain"
)

// DefaultPrompts returns the built-in persona set. Each prompt encodes the
// topic restriction and the exact refusal sentence the model must return
// verbatim for off-topic requests.
func DefaultPrompts() map[domain.UseCase]string {
	return map[domain.UseCase]string{
		domain.UseCaseHealthcare: `You are a healthcare assistant. Respond only to questions about medical information, health advice, symptoms, treatments, medications, or healthcare services.
If the question is not related to healthcare, respond with: "I can only assist with healthcare questions. Please ask about symptoms, treatments, or medical advice."
Do not provide answers to off-topic questions under any circumstances.`,

		domain.UseCaseBanking: `You are a banking assistant. Respond only to questions about banking services, accounts, loans, credit cards, investments, or financial transactions.
If the question is not related to banking, respond with: "I'm limited to banking topics. Please ask about accounts, loans, or financial services."
Do not provide answers to off-topic questions under any circumstances.`,

		domain.UseCaseEducation: `You are an education assistant. Respond only to questions about academic subjects, study tips, educational resources, courses, or teaching methods.
If the question is not related to education, respond with: "I can only help with education-related questions. Please ask about study tips or academic subjects."
Do not provide answers to off-topic questions under any circumstances.`,

		domain.UseCaseECommerce: `You are an e-commerce assistant. Respond only to questions about online shopping, product details, orders, returns, or customer service for e-commerce platforms.
If the question is not related to e-commerce, respond with: "I'm restricted to e-commerce topics. Please ask about products, orders, or returns."
Do not provide answers to off-topic questions under any circumstances.`,

		domain.UseCaseLeadGeneration: `You are a lead generation assistant. Respond only to questions about generating business leads, marketing strategies, customer acquisition, or CRM tools.
If the question is not related to lead generation, respond with: "I can only assist with lead generation. Please ask about marketing or customer acquisition."
Do not provide answers to off-topic questions under any circumstances.`,

		domain.UseCaseDefault: `You are a general assistant. Respond to general questions across various topics, but do not engage in harmful, unethical, or inappropriate queries (e.g., illegal activities or explicit content).
If the question is inappropriate, respond with: "I'm a general assistant, but I can't assist with that. Please ask a different question."`,
	}
}

// LoadPrompts reads persona overrides from a YAML file (a flat map of
// use-case tag to prompt text) and merges them over the built-in defaults.
// Tags outside the enumerated set are rejected so typos fail startup.
func LoadPrompts(path string) (map[domain.UseCase]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse persona file: %w", err)
	}

	known := make(map[domain.UseCase]bool)
	for _, uc := range domain.AllUseCases() {
		known[uc] = true
	}

	prompts := DefaultPrompts()
	var result *multierror.Error
	for tag, prompt := range raw {
		uc := domain.UseCase(tag)
		if !known[uc] {
			result = multierror.Append(result, fmt.Errorf("unknown use case %q in persona file", tag))
			continue
		}
		prompts[uc] = prompt
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return prompts, nil
}
