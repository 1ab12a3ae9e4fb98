package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"survey-server/internal/config"
	"survey-server/internal/models"
)

// Transcriber распознает речь из загруженного аудио.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte, mimeHint string) (string, error)
}

// Synthesizer синтезирует речь для текста ассистента.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// openAISpeech реализует Transcriber и Synthesizer через OpenAI audio API.
type openAISpeech struct {
	client   *openaigo.Client
	sttModel string
	ttsModel string
	ttsVoice string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSpeechClient создает клиент речевых сервисов (whisper + TTS).
func NewSpeechClient(cfg *config.Config, logger *zap.Logger) (Transcriber, Synthesizer) {
	client := openaigo.NewClient(cfg.AIAPIKey)
	s := &openAISpeech{
		client:   client,
		sttModel: cfg.STTModel,
		ttsModel: cfg.TTSModel,
		ttsVoice: cfg.TTSVoice,
		timeout:  cfg.SpeechTimeout,
		logger:   logger.Named("Speech"),
	}
	return s, s
}

// Transcribe распознает речь. mimeHint не передается в API: whisper определяет
// формат по расширению имени файла.
func (s *openAISpeech) Transcribe(ctx context.Context, filename string, audio []byte, mimeHint string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: пустой аудио-пейлоад", models.ErrTranscriptionFailed)
	}
	if filename == "" {
		filename = "audio.wav"
	}

	requestCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := s.client.CreateTranscription(requestCtx, openaigo.AudioRequest{
		Model:    s.sttModel,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Warn("Ошибка транскрипции",
			zap.Duration("duration", duration),
			zap.String("filename", filename),
			zap.String("mime_hint", mimeHint),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrTranscriptionFailed, err)
	}

	s.logger.Debug("Аудио транскрибировано",
		zap.Duration("duration", duration),
		zap.Int("audio_bytes", len(audio)),
		zap.Int("text_len", len(resp.Text)))

	return resp.Text, nil
}

// Synthesize синтезирует речь в формате wav.
func (s *openAISpeech) Synthesize(ctx context.Context, text string) ([]byte, error) {
	requestCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := s.client.CreateSpeech(requestCtx, openaigo.CreateSpeechRequest{
		Model:          openaigo.SpeechModel(s.ttsModel),
		Input:          text,
		Voice:          openaigo.SpeechVoice(s.ttsVoice),
		ResponseFormat: openaigo.SpeechResponseFormatWav,
	})
	if err != nil {
		s.logger.Warn("Ошибка синтеза речи",
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrSynthesisFailed, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка чтения аудио-потока: %v", models.ErrSynthesisFailed, err)
	}

	s.logger.Debug("Речь синтезирована",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("text_len", len(text)),
		zap.Int("audio_bytes", len(audio)))

	return audio, nil
}
