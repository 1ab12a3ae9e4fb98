package models

import "errors"

// Ошибки уровня зависимостей. Транзитные ошибки (транскрипция, оракул, синтез)
// означают, что мутация сессии не применялась и ход можно безопасно повторить.
var (
	// ErrSessionNotFound - неизвестный session_id (ошибка вызывающей стороны).
	ErrSessionNotFound = errors.New("сессия не найдена")

	// ErrQuestionNotFound - запрошен вопрос вне каталога.
	ErrQuestionNotFound = errors.New("вопрос не найден")

	// ErrTranscriptionFailed - ошибка распознавания речи.
	ErrTranscriptionFailed = errors.New("ошибка транскрипции аудио")

	// ErrOracleUnavailable - AI оракул недоступен или вернул некорректный ответ.
	ErrOracleUnavailable = errors.New("AI оракул недоступен")

	// ErrSynthesisFailed - ошибка синтеза речи.
	ErrSynthesisFailed = errors.New("ошибка синтеза речи")
)
