package handler

import (
	"encoding/base64"

	"survey-server/internal/models"
)

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// QuestionDTO - вопрос каталога для ответа.
type QuestionDTO struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// MessageDTO - сообщение ассистента; аудио кодируется в base64,
// так как JSON не передает сырые байты.
type MessageDTO struct {
	Role    string   `json:"role"`
	Text    string   `json:"text"`
	Audio   string   `json:"audio,omitempty"`
	Options []string `json:"options"`
}

// TurnResponseDTO - результат одного хода для ответа.
type TurnResponseDTO struct {
	Transcription string       `json:"transcription,omitempty"`
	Messages      []MessageDTO `json:"messages"`
	UIAction      string       `json:"ui_action"`
}

// StartSessionResponseDTO - ответ на создание сессии.
type StartSessionResponseDTO struct {
	SessionID string          `json:"session_id"`
	Response  TurnResponseDTO `json:"response"`
}

func toQuestionDTO(q models.Question) QuestionDTO {
	options := q.Options
	if options == nil {
		options = []string{}
	}
	return QuestionDTO{ID: q.ID, Text: q.Text, Options: options}
}

func toTurnResponseDTO(tr models.TurnResponse) TurnResponseDTO {
	messages := make([]MessageDTO, 0, len(tr.Messages))
	for _, m := range tr.Messages {
		dto := MessageDTO{
			Role:    m.Role,
			Text:    m.Text,
			Options: m.Options,
		}
		if dto.Options == nil {
			dto.Options = []string{}
		}
		if len(m.Audio) > 0 {
			dto.Audio = base64.StdEncoding.EncodeToString(m.Audio)
		}
		messages = append(messages, dto)
	}
	return TurnResponseDTO{
		Transcription: tr.Transcription,
		Messages:      messages,
		UIAction:      string(tr.UIAction),
	}
}
