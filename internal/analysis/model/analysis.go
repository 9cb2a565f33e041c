package model

// AnalyzeInput is one inbound analyze request, already bound to a session.
type AnalyzeInput struct {
	SessionID string `json:"-"`
	ImageURL  string `json:"imageUrl"`
	UserInput string `json:"userInput,omitempty"`
}

// AnalyzeOutput is what the client receives on success.
type AnalyzeOutput struct {
	Analysis string `json:"analysis"`
}

// ReasoningParams are the fixed generation parameters of the reasoning call.
type ReasoningParams struct {
	Model       string
	MaxTokens   int
	Temperature float32
}
