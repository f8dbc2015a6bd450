package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatgate/internal/domain"
)

func TestNewRegistryCoversEveryUseCase(t *testing.T) {
	reg, err := NewRegistry(DefaultPrompts())
	if err != nil {
		t.Fatalf("default prompts should validate: %v", err)
	}

	for _, uc := range domain.AllUseCases() {
		if reg.PromptFor(uc) == "" {
			t.Errorf("use case %q resolved to an empty prompt", uc)
		}
	}
}

func TestNewRegistryReportsAllMissingEntries(t *testing.T) {
	prompts := DefaultPrompts()
	delete(prompts, domain.UseCaseBanking)
	delete(prompts, domain.UseCaseEducation)

	_, err := NewRegistry(prompts)
	if err == nil {
		t.Fatal("expected validation error for missing prompts")
	}
	for _, missing := range []string{"Banking", "Education"} {
		if !strings.Contains(err.Error(), missing) {
			t.Errorf("error should mention missing use case %q, got: %v", missing, err)
		}
	}
}

func TestPromptForUnknownTagFallsBackToDefault(t *testing.T) {
	reg, err := NewRegistry(DefaultPrompts())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []string{"", "Gaming", "healthcare", "DEFAULT"}
	want := reg.PromptFor(domain.UseCaseDefault)
	for _, tag := range tests {
		if got := reg.PromptFor(domain.UseCase(tag)); got != want {
			t.Errorf("PromptFor(%q) should equal the Default prompt", tag)
		}
	}
}

func TestLoadPromptsMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	content := "Banking: |\n  You are a strict banking assistant.\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	prompts, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	if !strings.Contains(prompts[domain.UseCaseBanking], "strict banking assistant") {
		t.Errorf("Banking prompt not overridden: %q", prompts[domain.UseCaseBanking])
	}
	if prompts[domain.UseCaseHealthcare] != DefaultPrompts()[domain.UseCaseHealthcare] {
		t.Error("untouched use cases should keep their default prompt")
	}
}

func TestLoadPromptsRejectsUnknownTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	content := "Gaming: prompt for a tag that does not exist\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadPrompts(path)
	if err == nil || !strings.Contains(err.Error(), "Gaming") {
		t.Fatalf("expected unknown-tag error mentioning Gaming, got: %v", err)
	}
}
