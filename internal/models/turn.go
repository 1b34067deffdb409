package models

import "time"

// Turn is one persisted (prompt, answer) pair of a guide session.
type Turn struct {
	Seq       int64     `firestore:"seq"`
	Prompt    string    `firestore:"prompt"`
	Answer    string    `firestore:"answer"`
	Encrypted bool      `firestore:"encrypted,omitempty"`
	PromptAt  time.Time `firestore:"promptAt"`
	AnswerAt  time.Time `firestore:"answerAt"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// Messages expands the turn into its human and assistant messages.
func (t Turn) Messages() []Message {
	return []Message{
		UserMessage(t.Prompt, t.PromptAt),
		AssistantMessage(t.Answer, t.AnswerAt),
	}
}

// NewTurn pairs a human and an assistant message for storage.
func NewTurn(human, assistant Message) Turn {
	return Turn{
		Prompt:   human.Content,
		Answer:   assistant.Content,
		PromptAt: human.CreatedAt,
		AnswerAt: assistant.CreatedAt,
	}
}
