package demo

type SendMessageRequest struct {
	Query string `json:"query" binding:"max=500"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type TranscriptResponse struct {
	SessionID  string    `json:"session_id"`
	Generation uint64    `json:"generation"`
	Composing  bool      `json:"composing"`
	Messages   []Message `json:"messages"`
}

// ========================================
// Mappers
// ========================================

func ToTranscriptResponse(sessionID string, t Transcript) TranscriptResponse {
	messages := t.Messages
	if messages == nil {
		messages = []Message{}
	}
	return TranscriptResponse{
		SessionID:  sessionID,
		Generation: t.Generation,
		Composing:  t.Composing,
		Messages:   messages,
	}
}
