package domain

import "errors"

var (
	// ErrDecode is returned when an uploaded file cannot be read as tabular data.
	ErrDecode = errors.New("failed to parse file, ensure it is a valid Excel or CSV file")
	// ErrNoValidQuestions is returned when decoding worked but no row held a usable question.
	ErrNoValidQuestions = errors.New("no valid questions found, ensure columns: Question, Option A-D, Answer")
	// ErrBankNotFound is returned when no global question bank has been published.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrNoMatchingQuestions indicates the bank has nothing for the requested subject/difficulty.
	ErrNoMatchingQuestions = errors.New("no questions match the selected subject and difficulty")
	// ErrSessionNotFound is returned when a quiz session has not been initialized.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrParticipantNotFound is returned when a user tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in quiz")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrEmptyAnswer is returned when an answer submission carries no text.
	ErrEmptyAnswer = errors.New("answer is empty")
	// ErrAlreadyAnswered is returned when a participant answers the same question twice.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrUnauthorized is returned for admin operations without a valid admin token.
	ErrUnauthorized = errors.New("unauthorized")
)
