package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/backsoul/quizconsole/pkg/models"
	"github.com/backsoul/quizconsole/pkg/store"
)

var (
	ErrEmptyQuestion = errors.New("question text must not be empty")
	ErrOptionCount   = errors.New("exactly 4 options are required")
	ErrInvalidLetter = errors.New("correct answer must be one of A, B, C, or D")
)

// QuestionService maneja el banco de preguntas
type QuestionService struct {
	store store.Store
}

func NewQuestionService(st store.Store) *QuestionService {
	return &QuestionService{store: st}
}

// AddQuestion guarda una pregunta con sus cuatro opciones y la letra correcta.
// La fila de opciones se escribe antes que la de la pregunta: si se corta a
// mitad, queda a lo sumo una fila de opciones huérfana.
func (s *QuestionService) AddQuestion(ctx context.Context, text string, options []string, correct string) (models.Question, error) {
	if strings.TrimSpace(text) == "" {
		return models.Question{}, ErrEmptyQuestion
	}
	if len(options) != len(models.Letters) {
		return models.Question{}, ErrOptionCount
	}
	correct = models.NormalizeLetter(correct)
	if models.LetterIndex(correct) < 0 {
		return models.Question{}, ErrInvalidLetter
	}

	questionRows, err := s.store.Load(ctx, store.TableQuestions)
	if err != nil {
		return models.Question{}, fmt.Errorf("error loading questions: %w", err)
	}
	optionRows, err := s.store.Load(ctx, store.TableOptions)
	if err != nil {
		return models.Question{}, fmt.Errorf("error loading options: %w", err)
	}

	q := models.Question{ID: nextQuestionID(questionRows), Text: text, Correct: correct}
	copy(q.Options[:], options)

	if err := s.store.Save(ctx, store.TableOptions, append(optionRows, q.OptionRow())); err != nil {
		return models.Question{}, fmt.Errorf("error saving options: %w", err)
	}
	if err := s.store.Save(ctx, store.TableQuestions, append(questionRows, q.QuestionRow())); err != nil {
		return models.Question{}, fmt.Errorf("error saving questions: %w", err)
	}

	log.Printf("✅ Pregunta %d agregada", q.ID)
	return q, nil
}

// Questions une cada pregunta con sus opciones por id, en el orden de las
// preguntas. Si varias filas de opciones comparten id, gana la última.
func (s *QuestionService) Questions(ctx context.Context) ([]models.Question, error) {
	questionRows, err := s.store.Load(ctx, store.TableQuestions)
	if err != nil {
		return nil, fmt.Errorf("error loading questions: %w", err)
	}
	optionRows, err := s.store.Load(ctx, store.TableOptions)
	if err != nil {
		return nil, fmt.Errorf("error loading options: %w", err)
	}

	type optionSet struct {
		options [4]string
		correct string
	}
	byID := make(map[int]optionSet, len(optionRows))
	for _, row := range optionRows {
		id, opts, correct, ok := models.ParseOptionRow(row)
		if !ok {
			log.Printf("⚠️ Fila de opciones ilegible, se omite: %v", row)
			continue
		}
		byID[id] = optionSet{options: opts, correct: correct}
	}

	questions := make([]models.Question, 0, len(questionRows))
	for _, row := range questionRows {
		id, text, ok := models.ParseQuestionRow(row)
		if !ok {
			continue
		}
		set, ok := byID[id]
		if !ok {
			log.Printf("⚠️ La pregunta %d no tiene opciones, se omite", id)
			continue
		}
		questions = append(questions, models.Question{
			ID:      id,
			Text:    text,
			Options: set.options,
			Correct: set.correct,
		})
	}
	return questions, nil
}

// QuestionsFile es el formato JSON que acepta LoadQuestionsFromFile
type QuestionsFile struct {
	Questions []struct {
		Question string            `json:"question"`
		Options  map[string]string `json:"options"`
		Correct  string            `json:"correctAnswer"`
	} `json:"questions"`
}

// Count obtiene la cantidad de preguntas jugables
func (s *QuestionService) Count(ctx context.Context) (int, error) {
	qs, err := s.Questions(ctx)
	if err != nil {
		return 0, err
	}
	return len(qs), nil
}

// LoadQuestionsFromFile agrega al banco las preguntas de un archivo JSON y
// devuelve cuántas se agregaron. Las entradas inválidas se registran y se
// omiten.
func (s *QuestionService) LoadQuestionsFromFile(ctx context.Context, filePath string) (int, error) {
	log.Printf("📂 Cargando preguntas desde: %s", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("error reading %s: %w", filePath, err)
	}
	var seed QuestionsFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", filePath, err)
	}

	added := 0
	for i, q := range seed.Questions {
		options := make([]string, 0, len(models.Letters))
		for _, l := range models.Letters {
			if text, ok := q.Options[l]; ok {
				options = append(options, text)
			}
		}
		if _, err := s.AddQuestion(ctx, q.Question, options, q.Correct); err != nil {
			log.Printf("❌ Se omite la pregunta %d de %s: %v", i+1, filePath, err)
			continue
		}
		added++
	}
	return added, nil
}

// nextQuestionID es uno más que el mayor entre la cantidad de registros y el
// id más alto, así nunca se reutiliza un id.
func nextQuestionID(rows [][]string) int {
	count, maxID := 0, 0
	for _, row := range rows {
		id, _, ok := models.ParseQuestionRow(row)
		if !ok {
			continue
		}
		count++
		if id > maxID {
			maxID = id
		}
	}
	if maxID > count {
		return maxID + 1
	}
	return count + 1
}
