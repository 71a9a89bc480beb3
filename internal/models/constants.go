package models

const (
	SystemPrompt = "You are a helpful assistant."
)

var (
	AnswerPromptTemplate = `You are an AI assistant. Answer the question with well-structured details.

Question: %s
Retrieved Information: %s

Explain the answer clearly, expanding when necessary.
Answer:
`
)
