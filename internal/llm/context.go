package llm

import "context"

// Purpose labels say what a paper needed a provider call for. They ride
// on the context so the logging decorator can persist them without an
// extra parameter threading through every call site.
const (
	// PurposeGenerate marks the first batch requested for a paper.
	PurposeGenerate = "paper-gen"
	// PurposeTopUp marks a refill call after a shortfall.
	PurposeTopUp = "paper-topup"
	// PurposeUnknown is recorded when no label was attached.
	PurposeUnknown = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx with the reason for the upcoming provider call.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom reads the purpose tag, PurposeUnknown when absent.
func PurposeFrom(ctx context.Context) string {
	p, ok := ctx.Value(purposeKey{}).(string)
	if !ok {
		return PurposeUnknown
	}
	return p
}
