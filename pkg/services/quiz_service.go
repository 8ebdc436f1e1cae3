package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/backsoul/quizconsole/pkg/models"
	"github.com/backsoul/quizconsole/pkg/store"
	"github.com/google/uuid"
)

var (
	ErrNoQuestions    = errors.New("there are no questions yet")
	ErrInvalidAnswer  = errors.New("answer must be A, B, C, or D")
	ErrQuizFinished   = errors.New("all questions have been answered")
	ErrQuizIncomplete = errors.New("quiz still has unanswered questions")
)

// EventScoreRecorded se publica cuando se guarda un quiz terminado
const EventScoreRecorded = "scoreRecorded"

// Notifier recibe los eventos del quiz. Lo implementa el hub WebSocket.
type Notifier interface {
	BroadcastMessage(msgType string, data interface{})
}

// QuizService maneja las sesiones de quiz y registra sus puntajes
type QuizService struct {
	store     store.Store
	questions *QuestionService
	users     *UserService
	notifier  Notifier
	now       func() time.Time
}

func NewQuizService(st store.Store, questions *QuestionService, users *UserService) *QuizService {
	return &QuizService{
		store:     st,
		questions: questions,
		users:     users,
		now:       time.Now,
	}
}

// SetNotifier conecta un receptor para los puntajes registrados
func (s *QuizService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Begin inicia una sesión con todas las preguntas del banco
func (s *QuizService) Begin(ctx context.Context, username string) (*models.QuizSession, error) {
	questions, err := s.questions.Questions(ctx)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	session := &models.QuizSession{
		ID:        uuid.New().String(),
		Username:  username,
		Questions: questions,
		Answers:   []models.PlayerAnswer{},
		StartTime: s.now(),
	}
	log.Printf("🎮 Quiz %s iniciado para %s (%d preguntas)", session.ID, username, len(questions))
	return session, nil
}

// Answer registra la respuesta a la pregunta actual. Una respuesta fuera de
// A-D igual consume la pregunta y no suma; el error lo indica.
func (s *QuizService) Answer(session *models.QuizSession, letter string) (bool, error) {
	q, ok := session.Current()
	if !ok {
		return false, ErrQuizFinished
	}

	letter = models.NormalizeLetter(letter)
	answer := models.PlayerAnswer{QuestionID: q.ID, SelectedOption: letter}
	if models.LetterIndex(letter) < 0 {
		session.Answers = append(session.Answers, answer)
		return false, ErrInvalidAnswer
	}

	answer.IsCorrect = letter == q.Correct
	if answer.IsCorrect {
		session.Correct++
	}
	session.Answers = append(session.Answers, answer)
	return answer.IsCorrect, nil
}

// Finish calcula el porcentaje, sobrescribe el puntaje del usuario y agrega
// el intento al historial.
func (s *QuizService) Finish(ctx context.Context, session *models.QuizSession) (models.Attempt, error) {
	if !session.Done() {
		return models.Attempt{}, ErrQuizIncomplete
	}

	attempt := models.Attempt{
		ID:         session.ID,
		Username:   session.Username,
		Correct:    session.Correct,
		Total:      session.Total(),
		Score:      models.FormatScore(session.Correct, session.Total()),
		FinishedAt: s.now(),
	}

	if err := s.users.RecordScore(ctx, session.Username, attempt.Score); err != nil {
		return models.Attempt{}, err
	}

	rows, err := s.store.Load(ctx, store.TableAttempts)
	if err != nil {
		return models.Attempt{}, fmt.Errorf("error loading attempts: %w", err)
	}
	if err := s.store.Save(ctx, store.TableAttempts, append(rows, attempt.Row())); err != nil {
		return models.Attempt{}, fmt.Errorf("error saving attempts: %w", err)
	}

	log.Printf("🏁 Quiz %s terminado: %s obtuvo %s", session.ID, session.Username, attempt.Score)
	if s.notifier != nil {
		s.notifier.BroadcastMessage(EventScoreRecorded, attempt)
	}
	return attempt, nil
}

// Attempts obtiene el historial de intentos, del más antiguo al más nuevo
func (s *QuizService) Attempts(ctx context.Context) ([]models.Attempt, error) {
	rows, err := s.store.Load(ctx, store.TableAttempts)
	if err != nil {
		return nil, fmt.Errorf("error loading attempts: %w", err)
	}
	attempts := make([]models.Attempt, 0, len(rows))
	for _, row := range rows {
		a, ok := models.AttemptFromRow(row)
		if !ok {
			log.Printf("⚠️ Fila de intento ilegible, se omite: %v", row)
			continue
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// History obtiene los intentos de un usuario
func (s *QuizService) History(ctx context.Context, username string) ([]models.Attempt, error) {
	all, err := s.Attempts(ctx)
	if err != nil {
		return nil, err
	}
	var mine []models.Attempt
	for _, a := range all {
		if a.Username == username {
			mine = append(mine, a)
		}
	}
	return mine, nil
}
