package dto

type GenerateRequest struct {
	UserID    string `json:"user_id"`
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id"`
}

type GenerateResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type WelcomeResponse struct {
	Message string `json:"message"`
}
