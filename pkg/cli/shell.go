// Package cli is the interactive console front end of the quiz.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/backsoul/quizconsole/pkg/models"
	"github.com/backsoul/quizconsole/pkg/services"
)

// maxLineBytes bounds a single line of input.
const maxLineBytes = 1 << 20

var errLineTooLong = errors.New("input line too long")

const weakPasswordMessage = "Password must be at least 8 characters long, include at least one uppercase letter, one digit, and one special character."

// Shell reads menu choices from in and writes prompts and results to out.
type Shell struct {
	in      *bufio.Reader
	out     io.Writer
	maxLine int

	auth      *services.AuthService
	users     *services.UserService
	questions *services.QuestionService
	quiz      *services.QuizService
}

func NewShell(in io.Reader, out io.Writer, auth *services.AuthService, users *services.UserService, questions *services.QuestionService, quiz *services.QuizService) *Shell {
	return &Shell{
		in:        bufio.NewReader(in),
		out:       out,
		maxLine:   maxLineBytes,
		auth:      auth,
		users:     users,
		questions: questions,
		quiz:      quiz,
	}
}

// Run shows the main menu until the user exits or input ends. Store
// failures and over-long lines are printed and the menu continues; only read
// errors and ctx cancellation are returned.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.println("\n1. Admin Login")
		s.println("2. Participant Login")
		s.println("3. Exit")
		choice, err := s.prompt("Choose an option: ")
		if errors.Is(err, errLineTooLong) {
			continue
		}
		if err != nil {
			return s.endOfInput(err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.adminLogin(ctx)
		case "2":
			err = s.participantLogin(ctx)
		case "3":
			s.println("Goodbye!")
			return nil
		default:
			s.println("Invalid option.")
		}
		if err != nil && !errors.Is(err, errLineTooLong) {
			return s.endOfInput(err)
		}
	}
}

func (s *Shell) adminLogin(ctx context.Context) error {
	username, err := s.prompt("Enter admin username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Enter admin password: ")
	if err != nil {
		return err
	}
	if err := s.auth.AuthenticateAdmin(username, password); err != nil {
		log.Printf("⚠️ Failed admin login as %q", username)
		s.println("Invalid admin credentials.")
		return nil
	}
	return s.adminMenu(ctx)
}

func (s *Shell) adminMenu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.println("\nAdmin Menu:")
		s.println("1. Add New User")
		s.println("2. Add/Update Questions")
		s.println("3. View Participant Results")
		s.println("4. Exit")
		choice, err := s.prompt("Choose an option: ")
		if errors.Is(err, errLineTooLong) {
			continue
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.addUser(ctx)
		case "2":
			err = s.addQuestion(ctx)
		case "3":
			s.viewResults(ctx)
		case "4":
			return nil
		default:
			s.println("Invalid choice.")
		}
		if err != nil && !errors.Is(err, errLineTooLong) {
			return err
		}
	}
}

func (s *Shell) addUser(ctx context.Context) error {
	username, err := s.prompt("Enter Username: ")
	if err != nil {
		return err
	}
	unique, err := s.auth.IsUniqueUsername(ctx, username)
	if err != nil {
		s.report(err)
		return nil
	}
	if !unique {
		s.println("Username already exists. Try again.")
		return nil
	}

	password, err := s.prompt("Enter Password: ")
	if err != nil {
		return err
	}

	_, err = s.users.AddUser(ctx, username, password)
	switch {
	case err == nil:
		s.printf("User %s added successfully.\n", username)
	case errors.Is(err, services.ErrWeakPassword):
		s.println(weakPasswordMessage)
	case errors.Is(err, services.ErrUsernameTaken):
		s.println("Username already exists. Try again.")
	default:
		s.report(err)
	}
	return nil
}

func (s *Shell) addQuestion(ctx context.Context) error {
	text, err := s.prompt("Enter Question Text: ")
	if err != nil {
		return err
	}

	s.println("Enter 4 options (A, B, C, D):")
	options := make([]string, 0, len(models.Letters))
	for _, letter := range models.Letters {
		option, err := s.prompt(letter + ": ")
		if err != nil {
			return err
		}
		options = append(options, option)
	}

	correct, err := s.prompt("Enter correct answer (A, B, C, or D): ")
	if err != nil {
		return err
	}

	_, err = s.questions.AddQuestion(ctx, text, options, correct)
	switch {
	case err == nil:
		s.println("Question and options added/updated successfully.")
	case errors.Is(err, services.ErrInvalidLetter):
		s.println("Error: The correct answer must be one of A, B, C, or D.")
	default:
		s.report(err)
	}
	return nil
}

func (s *Shell) viewResults(ctx context.Context) {
	users, err := s.users.Results(ctx)
	if err != nil {
		s.report(err)
		return
	}
	s.println("Participant Results:")
	for _, u := range users {
		s.printf("%s - Score: %s\n", u.Username, u.Score)
	}
}

func (s *Shell) participantLogin(ctx context.Context) error {
	username, err := s.prompt("Enter Username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Enter Password: ")
	if err != nil {
		return err
	}

	user, err := s.auth.Login(ctx, username, password)
	switch {
	case err == nil:
		s.println("Login successful!")
		return s.takeQuiz(ctx, user.Username)
	case errors.Is(err, services.ErrWrongPassword):
		s.println("Wrong Password. Please enter the correct password.")
	case errors.Is(err, services.ErrNotRegistered):
		s.println("Please ask the administrator for registration.")
	default:
		s.report(err)
	}
	return nil
}

// takeQuiz asks every question once. Leaving mid-quiz records nothing.
func (s *Shell) takeQuiz(ctx context.Context, username string) error {
	session, err := s.quiz.Begin(ctx, username)
	if errors.Is(err, services.ErrNoQuestions) {
		s.println("There are no questions yet. Please ask the administrator to add some.")
		return nil
	}
	if err != nil {
		s.report(err)
		return nil
	}

	for !session.Done() {
		q, _ := session.Current()
		s.printf("Question %d: %s\n", session.Number(), q.Text)
		for i, letter := range models.Letters {
			s.printf("%s: %s\n", letter, q.Options[i])
		}

		answer, err := s.prompt("Enter your answer (A/B/C/D): ")
		if errors.Is(err, errLineTooLong) {
			answer = ""
		} else if err != nil {
			return err
		}
		correct, err := s.quiz.Answer(session, answer)
		switch {
		case errors.Is(err, services.ErrInvalidAnswer):
			s.println("Invalid answer. Please enter A, B, C, or D.")
		case err != nil:
			return err
		case correct:
			s.println("Correct!")
		default:
			s.println("Wrong answer.")
		}
	}

	attempt, err := s.quiz.Finish(ctx, session)
	if err != nil {
		s.report(err)
		return nil
	}
	s.printf("Your result: %s Passed.\n", attempt.Score)
	return nil
}

// prompt prints label and reads one line. It returns io.EOF when input
// ends, and errLineTooLong, after telling the user, when the line is over
// the limit.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.readLine()
	if errors.Is(err, errLineTooLong) {
		s.printf("Error: input line too long (limit %d bytes).\n", s.maxLine)
	}
	return line, err
}

// readLine reads up to the next newline. An over-limit line is consumed in
// full and dropped so the next read starts on a fresh line.
func (s *Shell) readLine() (string, error) {
	var (
		line    []byte
		read    bool
		tooLong bool
	)
	for {
		chunk, err := s.in.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			if len(line)+len(chunk) > s.maxLine+2 { // room for "\r\n"
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && !read:
			return "", io.EOF
		case err != nil && !errors.Is(err, io.EOF):
			return "", fmt.Errorf("error reading input: %w", err)
		case tooLong:
			return "", errLineTooLong
		}
		return strings.TrimRight(string(line), "\r\n"), nil
	}
}

// endOfInput turns a closed input into a clean exit.
func (s *Shell) endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		s.println("")
		return nil
	}
	return err
}

func (s *Shell) report(err error) {
	log.Printf("❌ %v", err)
	s.printf("Error: %v\n", err)
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
