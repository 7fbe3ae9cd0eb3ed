package metrics

// TokenUsage captures LLM token counts used to satisfy a request.
type TokenUsage struct {
	PromptTokens     int  `json:"promptTokens"`
	CompletionTokens int  `json:"completionTokens,omitempty"`
	TotalTokens      int  `json:"totalTokens"`
	Estimated        bool `json:"estimated,omitempty"`
}

// PromptOnly builds a usage record for a prompt whose completion size is unknown.
func PromptOnly(tokens int, estimated bool) TokenUsage {
	return TokenUsage{PromptTokens: tokens, TotalTokens: tokens, Estimated: estimated}
}
