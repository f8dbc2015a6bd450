package domain

// UseCase selects the topical persona a conversation is restricted to.
type UseCase string

const (
	UseCaseDefault        UseCase = "Default"
	UseCaseHealthcare     UseCase = "Healthcare"
	UseCaseBanking        UseCase = "Banking"
	UseCaseEducation      UseCase = "Education"
	UseCaseECommerce      UseCase = "E-commerce"
	UseCaseLeadGeneration UseCase = "Lead Generation"
)

// AllUseCases returns the closed set of supported use cases.
func AllUseCases() []UseCase {
	return []UseCase{
		UseCaseDefault,
		UseCaseHealthcare,
		UseCaseBanking,
		UseCaseEducation,
		UseCaseECommerce,
		UseCaseLeadGeneration,
	}
}

// NormalizeUseCase maps arbitrary input to a member of the enumerated set.
// Unknown or empty tags fall back to Default, never an error.
func NormalizeUseCase(s string) UseCase {
	for _, uc := range AllUseCases() {
		if string(uc) == s {
			return uc
		}
	}
	return UseCaseDefault
}
