package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"survey-server/internal/catalog"
	"survey-server/internal/models"
)

// Реплики ассистента. Пользователь никогда не видит сырых ошибок:
// все восстановимые ситуации превращаются в голосовые уточнения.
const (
	msgSurveyComplete    = "This survey is already complete. Thank you for your time!"
	msgSurveyFinished    = "That was the last question. Thank you for completing the survey!"
	msgInvalidAnswer     = "Please choose one of the listed options."
	msgInvalidTarget     = "There is no question with that number."
	msgDidNotUnderstand  = "Sorry, I didn't catch that."
	msgJumpAcknowledged  = "Okay, let's go back to question %d."
)

// Prompt - текст сообщения с вариантами до синтеза речи.
type Prompt struct {
	Text    string
	Options []string
}

// TurnOutcome - решение движка по одному ходу: что сказать, какую директиву
// отдать UI и какую мутацию применить к сессии. Mutation == nil означает, что
// состояние не меняется. Мутация применяется вызывающей стороной атомарно
// и только после успешного завершения всех внешних вызовов хода.
type TurnOutcome struct {
	Prompts  []Prompt
	UIAction models.UIAction
	Mutation func(*models.Session) error

	Intent models.Intent
	// Принятый ответ (для persistence sink): заполняется только при валидном ANSWER.
	Recorded         bool
	AnsweredQuestion models.Question
	MappedOption     string
}

// DialogueEngine - машина состояний диалога. Работает со снапшотом сессии,
// сама состояние не хранит и хранилище не трогает. Классификация и валидация
// делегированы оракулу и принимаются как авторитетные: движок только ветвится
// по их результату, поэтому оракул заменяем без изменения машины состояний.
type DialogueEngine struct {
	catalog     *catalog.Catalog
	classifier  IntentClassifier
	interpreter AnswerInterpreter
	explainer   QuestionExplainer
	logger      *zap.Logger
}

// NewDialogueEngine создает движок диалога.
func NewDialogueEngine(
	cat *catalog.Catalog,
	classifier IntentClassifier,
	interpreter AnswerInterpreter,
	explainer QuestionExplainer,
	logger *zap.Logger,
) *DialogueEngine {
	return &DialogueEngine{
		catalog:     cat,
		classifier:  classifier,
		interpreter: interpreter,
		explainer:   explainer,
		logger:      logger.Named("DialogueEngine"),
	}
}

// PromptForIndex возвращает промт вопроса по 0-based индексу
// (используется при старте сессии и для переозвучки).
func (e *DialogueEngine) PromptForIndex(index int) (Prompt, error) {
	q, err := e.catalog.Get(index)
	if err != nil {
		return Prompt{}, err
	}
	return promptFor(q), nil
}

// RunTurn выполняет протокол одного хода над снапшотом сессии.
// При ошибке внешнего оракула возвращается ошибка и никакая мутация
// не предлагается - ход безопасно повторяем.
func (e *DialogueEngine) RunTurn(ctx context.Context, sess models.Session, transcript string) (TurnOutcome, error) {
	total := e.catalog.Len()

	// 1. Завершенная сессия - терминальное состояние, дальше не обрабатываем.
	if sess.Status == models.StatusComplete || sess.CurrentIndex >= total {
		return TurnOutcome{
			Prompts:  []Prompt{{Text: msgSurveyComplete}},
			UIAction: models.UIActionEnd,
		}, nil
	}

	// 2. Текущий вопрос.
	current, err := e.catalog.Get(sess.CurrentIndex)
	if err != nil {
		return TurnOutcome{}, err
	}

	// 3. Классификация интента.
	intentResult, err := e.classifier.Classify(ctx, sess.ID, current, transcript)
	if err != nil {
		return TurnOutcome{}, err
	}

	e.logger.Debug("Интент классифицирован",
		zap.String("session_id", sess.ID),
		zap.String("intent", string(intentResult.Intent)),
		zap.Int("current_index", sess.CurrentIndex))

	// 4. Диспетчеризация.
	switch intentResult.Intent {
	case models.IntentAnswer:
		return e.handleAnswer(ctx, sess, current, transcript, total)

	case models.IntentQuery:
		explanation, err := e.explainer.Explain(ctx, sess.ID, current.Text)
		if err != nil {
			return TurnOutcome{}, err
		}
		return TurnOutcome{
			Prompts:  []Prompt{{Text: explanation}, promptFor(current)},
			UIAction: models.UIActionStay,
			Intent:   models.IntentQuery,
		}, nil

	case models.IntentChangeRequest:
		if intentResult.TargetQuestion == nil {
			// Малформированный запрос навигации - как непонятое высказывание
			return e.didNotUnderstand(current, models.IntentChangeRequest), nil
		}
		return e.handleJump(sess, current, *intentResult.TargetQuestion, total), nil

	default:
		return e.didNotUnderstand(current, models.IntentInvalid), nil
	}
}

// handleAnswer валидирует ответ и при успехе продвигает сессию вперед.
func (e *DialogueEngine) handleAnswer(ctx context.Context, sess models.Session, current models.Question, transcript string, total int) (TurnOutcome, error) {
	validation, err := e.interpreter.Interpret(ctx, sess.ID, current, transcript)
	if err != nil {
		return TurnOutcome{}, err
	}

	if !validation.Valid {
		return TurnOutcome{
			Prompts:  []Prompt{{Text: msgInvalidAnswer}, promptFor(current)},
			UIAction: models.UIActionStay,
			Intent:   models.IntentAnswer,
		}, nil
	}

	mapped := ""
	if validation.MappedOption != nil {
		mapped = *validation.MappedOption
	}

	snapIndex := sess.CurrentIndex
	mutation := func(s *models.Session) error {
		// Конкурентный ход уже продвинул сессию: не даем индексу откатиться
		if s.Status != models.StatusAsking || s.CurrentIndex != snapIndex {
			return nil
		}
		s.Answers[current.ID] = mapped
		s.CurrentIndex++
		if s.CurrentIndex >= total {
			s.Status = models.StatusComplete
		}
		return nil
	}

	outcome := TurnOutcome{
		Mutation:         mutation,
		Intent:           models.IntentAnswer,
		Recorded:         true,
		AnsweredQuestion: current,
		MappedOption:     mapped,
	}

	newIndex := snapIndex + 1
	if newIndex < total {
		next, err := e.catalog.Get(newIndex)
		if err != nil {
			return TurnOutcome{}, err
		}
		outcome.Prompts = []Prompt{promptFor(next)}
		outcome.UIAction = models.UIActionNext
	} else {
		outcome.Prompts = []Prompt{{Text: msgSurveyFinished}}
		outcome.UIAction = models.UIActionEnd
	}
	return outcome, nil
}

// handleJump обрабатывает навигацию к вопросу target (1-based).
func (e *DialogueEngine) handleJump(sess models.Session, current models.Question, target int, total int) TurnOutcome {
	if target < 1 || target > total {
		return TurnOutcome{
			Prompts:  []Prompt{{Text: msgInvalidTarget}, promptFor(current)},
			UIAction: models.UIActionStay,
			Intent:   models.IntentChangeRequest,
		}
	}

	targetQuestion, err := e.catalog.Get(target - 1)
	if err != nil {
		// Невозможно после проверки диапазона, но каталог - внешняя граница
		return e.didNotUnderstand(current, models.IntentChangeRequest)
	}

	mutation := func(s *models.Session) error {
		if s.Status != models.StatusAsking {
			return nil
		}
		// Прыжок не стирает ранее записанный ответ: он будет перезаписан
		// следующим валидным ANSWER
		s.CurrentIndex = target - 1
		return nil
	}

	return TurnOutcome{
		Prompts: []Prompt{
			{Text: fmt.Sprintf(msgJumpAcknowledged, target)},
			promptFor(targetQuestion),
		},
		UIAction: models.UIActionReask,
		Mutation: mutation,
		Intent:   models.IntentChangeRequest,
	}
}

func (e *DialogueEngine) didNotUnderstand(current models.Question, intent models.Intent) TurnOutcome {
	return TurnOutcome{
		Prompts:  []Prompt{{Text: msgDidNotUnderstand}, promptFor(current)},
		UIAction: models.UIActionStay,
		Intent:   intent,
	}
}

func promptFor(q models.Question) Prompt {
	return Prompt{Text: q.Text, Options: q.Options}
}
