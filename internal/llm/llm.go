package llm

import "context"

// PromptKind selects which system prompt grounds a generation call.
type PromptKind string

const (
	// PromptInitial asks for the full structured summary.
	PromptInitial PromptKind = "initial"
	// PromptConversational asks for a direct follow-up answer.
	PromptConversational PromptKind = "conversational"
)

// Client is a minimal generation interface to allow pluggable providers.
// imagePath may be empty; when set the provider grounds the response on the
// image as well as the text.
type Client interface {
	Generate(ctx context.Context, kind PromptKind, text, imagePath string) (string, error)
}
