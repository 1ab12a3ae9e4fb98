package models

import "time"

// Question - один вопрос анкеты. Загружается при старте и не изменяется.
// ID - 1-based, непрерывный. Пустой Options означает открытый вопрос без валидации.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// IsOpenEnded сообщает, является ли вопрос открытым (без вариантов ответа).
func (q Question) IsOpenEnded() bool {
	return len(q.Options) == 0
}

// SessionStatus - статус прохождения анкеты.
type SessionStatus string

const (
	StatusAsking   SessionStatus = "asking"
	StatusComplete SessionStatus = "complete"
)

// Session - состояние одного респондента.
// Инвариант: 0 <= CurrentIndex <= total; CurrentIndex == total <=> StatusComplete.
type Session struct {
	ID           string
	CurrentIndex int            // 0-based индекс текущего вопроса
	Answers      map[int]string // question id (1-based) -> сопоставленный вариант ("" для открытых вопросов)
	Status       SessionStatus
	CreatedAt    time.Time
	LastActivity time.Time
}

// Intent - результат классификации высказывания пользователя.
type Intent string

const (
	IntentAnswer        Intent = "ANSWER"
	IntentQuery         Intent = "QUERY"
	IntentChangeRequest Intent = "CHANGE_REQUEST"
	IntentInvalid       Intent = "INVALID"
)

// IntentResult - результат классификатора.
// TargetQuestion присутствует только для CHANGE_REQUEST с извлеченным номером.
type IntentResult struct {
	Intent         Intent
	TargetQuestion *int
}

// ValidationResult - результат сопоставления ответа с вариантами.
// Для закрытых вопросов Valid == (MappedOption != nil).
type ValidationResult struct {
	MappedOption *string
	Valid        bool
}

// Message - исходящее сообщение ассистента с синтезированной озвучкой.
type Message struct {
	Role    string
	Text    string
	Audio   []byte // бинарный аудио-пейлоад (wav/mp3), кодируется в base64 на границе HTTP
	Options []string
}

const RoleAssistant = "assistant"

// UIAction - директива для UI: как продвигать состояние отображения.
type UIAction string

const (
	UIActionStay  UIAction = "stay"
	UIActionNext  UIAction = "next"
	UIActionReask UIAction = "reask"
	UIActionEnd   UIAction = "end"
)

// TurnResponse - результат одного хода диалога.
type TurnResponse struct {
	Transcription string
	Messages      []Message
	UIAction      UIAction
}

// TurnRecord - запись о принятом ответе для persistence sink.
type TurnRecord struct {
	SessionID     string
	Question      string
	Transcription string
	MappedOption  string
	Timestamp     time.Time
}
