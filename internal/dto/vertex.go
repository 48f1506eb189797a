package dto

// TextRequest is the input of the AI text-generation collaborator.
type TextRequest struct {
	Model           string
	System          string
	Prompt          string
	Temperature     *float32
	MaxOutputTokens *int32
}

type TextResponse struct {
	Text         string
	FinishReason string
	Raw          any
}
