package models

import (
	"strconv"
	"strings"
	"time"
)

// Letters are the answer labels, in option order.
var Letters = [4]string{"A", "B", "C", "D"}

// InitialScore is the score of a user who has not finished a quiz yet.
const InitialScore = "0%"

// User is one row of the users table: username,password,score.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
	Score    string `json:"score"`
}

func (u User) Row() []string {
	return []string{u.Username, u.Password, u.Score}
}

// UserFromRow decodes a users row. Missing trailing fields are left empty.
func UserFromRow(row []string) User {
	var u User
	if len(row) > 0 {
		u.Username = row[0]
	}
	if len(row) > 1 {
		u.Password = row[1]
	}
	if len(row) > 2 {
		u.Score = row[2]
	}
	return u
}

// Question is a quiz question together with its four options and the
// letter of the correct one.
type Question struct {
	ID      int       `json:"id"`
	Text    string    `json:"text"`
	Options [4]string `json:"options"`
	Correct string    `json:"-"`
}

// QuestionRow encodes the questions table row: id,text.
func (q Question) QuestionRow() []string {
	return []string{strconv.Itoa(q.ID), q.Text}
}

// OptionRow encodes the options table row: id,A,B,C,D,correct.
func (q Question) OptionRow() []string {
	return []string{strconv.Itoa(q.ID), q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.Correct}
}

// Option returns the text of the option labelled by letter.
func (q Question) Option(letter string) string {
	if i := LetterIndex(letter); i >= 0 {
		return q.Options[i]
	}
	return ""
}

// ParseQuestionRow decodes id,text. Rows whose id is not a number, such as
// a header, report ok=false.
func ParseQuestionRow(row []string) (id int, text string, ok bool) {
	if len(row) < 2 {
		return 0, "", false
	}
	id, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return 0, "", false
	}
	return id, row[1], true
}

// ParseOptionRow decodes id,A,B,C,D,correct.
func ParseOptionRow(row []string) (id int, options [4]string, correct string, ok bool) {
	if len(row) < 6 {
		return 0, options, "", false
	}
	id, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return 0, options, "", false
	}
	copy(options[:], row[1:5])
	correct = NormalizeLetter(row[5])
	if LetterIndex(correct) < 0 {
		return 0, options, "", false
	}
	return id, options, correct, true
}

// NormalizeLetter trims and upper-cases an answer letter.
func NormalizeLetter(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// LetterIndex maps A-D to 0-3 and anything else to -1.
func LetterIndex(letter string) int {
	for i, l := range Letters {
		if l == letter {
			return i
		}
	}
	return -1
}

// FormatScore renders correct/total*100 without rounding, e.g.
// "66.66666666666666%". Whole percentages carry no decimal part: "50%" and
// "100%", never "50.0%". Stored scores already use this form, starting
// with InitialScore.
func FormatScore(correct, total int) string {
	if total <= 0 {
		return InitialScore
	}
	pct := float64(correct) / float64(total) * 100
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// Attempt is one finished quiz, kept in the attempts table.
type Attempt struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	Score      string    `json:"score"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (a Attempt) Row() []string {
	return []string{
		a.ID,
		a.Username,
		strconv.Itoa(a.Correct),
		strconv.Itoa(a.Total),
		a.Score,
		a.FinishedAt.UTC().Format(time.RFC3339),
	}
}

func AttemptFromRow(row []string) (Attempt, bool) {
	if len(row) < 6 {
		return Attempt{}, false
	}
	correct, err := strconv.Atoi(row[2])
	if err != nil {
		return Attempt{}, false
	}
	total, err := strconv.Atoi(row[3])
	if err != nil {
		return Attempt{}, false
	}
	finished, err := time.Parse(time.RFC3339, row[5])
	if err != nil {
		return Attempt{}, false
	}
	return Attempt{
		ID:         row[0],
		Username:   row[1],
		Correct:    correct,
		Total:      total,
		Score:      row[4],
		FinishedAt: finished,
	}, true
}

// PlayerAnswer is an answer given during a quiz session.
type PlayerAnswer struct {
	QuestionID     int    `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

// QuizSession is the in-memory state of one participant taking the quiz.
// Nothing in it is persisted until the quiz is finished.
type QuizSession struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Questions []Question     `json:"-"`
	Answers   []PlayerAnswer `json:"answers"`
	Correct   int            `json:"correct"`
	StartTime time.Time      `json:"startTime"`
}

// Current returns the question awaiting an answer.
func (s *QuizSession) Current() (Question, bool) {
	if s.Done() {
		return Question{}, false
	}
	return s.Questions[len(s.Answers)], true
}

// Number is the 1-based position of the current question.
func (s *QuizSession) Number() int { return len(s.Answers) + 1 }

func (s *QuizSession) Total() int { return len(s.Questions) }

func (s *QuizSession) Done() bool { return len(s.Answers) >= len(s.Questions) }

// APIResponse is the envelope used by the results API.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResultsResponse lists participant scores.
type ResultsResponse struct {
	Results []User `json:"results"`
	Count   int    `json:"count"`
}

// AttemptsResponse lists finished quizzes.
type AttemptsResponse struct {
	Attempts []Attempt `json:"attempts"`
	Count    int       `json:"count"`
}
