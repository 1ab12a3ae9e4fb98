package service

import (
	"context"

	"go.uber.org/zap"

	"survey-server/internal/models"
)

// ResponseComposer заворачивает текст в сообщение ассистента с озвучкой.
// Чистая композиция, без ветвления.
type ResponseComposer struct {
	synthesizer Synthesizer
	logger      *zap.Logger
}

// NewResponseComposer создает композитор сообщений.
func NewResponseComposer(synthesizer Synthesizer, logger *zap.Logger) *ResponseComposer {
	return &ResponseComposer{
		synthesizer: synthesizer,
		logger:      logger.Named("ResponseComposer"),
	}
}

// Compose синтезирует озвучку для текста и собирает сообщение.
func (c *ResponseComposer) Compose(ctx context.Context, prompt Prompt) (models.Message, error) {
	audio, err := c.synthesizer.Synthesize(ctx, prompt.Text)
	if err != nil {
		return models.Message{}, err
	}

	options := prompt.Options
	if options == nil {
		options = []string{}
	}

	return models.Message{
		Role:    models.RoleAssistant,
		Text:    prompt.Text,
		Audio:   audio,
		Options: options,
	}, nil
}

// ComposeAll собирает сообщения для всех промтов хода.
func (c *ResponseComposer) ComposeAll(ctx context.Context, prompts []Prompt) ([]models.Message, error) {
	messages := make([]models.Message, 0, len(prompts))
	for _, p := range prompts {
		msg, err := c.Compose(ctx, p)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
