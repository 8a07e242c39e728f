package domain

import "errors"

var (
	ErrNoTasksSelected      = errors.New("no tasks selected")
	ErrGenerationFailed     = errors.New("text generation failed")
	ErrGeneratorUnavailable = errors.New("text generator not configured")
)

// ChatFallbackReply is stored as the assistant's answer when generation
// fails, so the transcript keeps its question/answer shape.
const ChatFallbackReply = "Sorry, an error occurred while processing your request."
