package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"survey-server/internal/models"
)

// Catalog - неизменяемый упорядоченный список вопросов анкеты.
// Загружается один раз при старте; блокировок не требует.
type Catalog struct {
	questions []models.Question
}

// New создает каталог из готового списка вопросов с проверкой инвариантов.
func New(questions []models.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("каталог вопросов пуст")
	}
	// ID должны быть 1-based и непрерывными
	for i, q := range questions {
		if q.ID != i+1 {
			return nil, fmt.Errorf("нарушение нумерации вопросов: позиция %d имеет id %d", i, q.ID)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("вопрос %d имеет пустой текст", q.ID)
		}
	}
	return &Catalog{questions: questions}, nil
}

// LoadCSV загружает каталог из CSV файла.
// Формат: заголовок id,question,options; варианты разделены символом '|'.
func LoadCSV(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл вопросов %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // колонка options может отсутствовать

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения CSV %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("файл вопросов %s не содержит ни одного вопроса", path)
	}

	// Первая строка - заголовок, пропускаем
	questions := make([]models.Question, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("строка %d: ожидается минимум 2 колонки (id,question)", i+2)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("строка %d: некорректный id %q: %w", i+2, rec[0], err)
		}
		q := models.Question{
			ID:   id,
			Text: strings.TrimSpace(rec[1]),
		}
		if len(rec) > 2 {
			q.Options = parseOptions(rec[2])
		}
		questions = append(questions, q)
	}

	return New(questions)
}

// parseOptions разбирает колонку options. Пустая колонка - открытый вопрос.
func parseOptions(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	options := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			options = append(options, p)
		}
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

// Len возвращает количество вопросов.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Get возвращает вопрос по 0-based индексу.
func (c *Catalog) Get(index int) (models.Question, error) {
	if index < 0 || index >= len(c.questions) {
		return models.Question{}, fmt.Errorf("%w: индекс %d вне диапазона [0, %d)", models.ErrQuestionNotFound, index, len(c.questions))
	}
	return c.questions[index], nil
}

// ByID возвращает вопрос по 1-based идентификатору.
func (c *Catalog) ByID(id int) (models.Question, error) {
	return c.Get(id - 1)
}

// All возвращает копию списка вопросов.
func (c *Catalog) All() []models.Question {
	out := make([]models.Question, len(c.questions))
	copy(out, c.questions)
	return out
}
