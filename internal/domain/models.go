package domain

import "time"

// Subject is a canonical subject tag.
type Subject string

const (
	SubjectGeography  Subject = "geo"
	SubjectScience    Subject = "sci"
	SubjectNutrition  Subject = "nut"
	SubjectTechnology Subject = "tech"
	SubjectMath       Subject = "math"
	SubjectGeneral    Subject = "gen"
)

// Subjects lists every canonical subject tag in preset order.
var Subjects = []Subject{
	SubjectGeography,
	SubjectScience,
	SubjectNutrition,
	SubjectTechnology,
	SubjectMath,
	SubjectGeneral,
}

// Difficulty is a canonical difficulty tag.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Question is a normalized multiple-choice question.
// CorrectAnswer always holds option text, never a letter code.
type Question struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation,omitempty"`
	Subject       Subject    `json:"subject,omitempty"`
	Difficulty    Difficulty `json:"difficulty,omitempty"`
}

// QuestionBank is the globally shared set of uploaded questions.
type QuestionBank struct {
	ID             string     `json:"id"`
	FileName       string     `json:"fileName"`
	Questions      []Question `json:"questions"`
	ActiveSubjects []Subject  `json:"activeSubjects"`
	UpdatedBy      string     `json:"updatedBy"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Version        int64      `json:"version"`
}

// IsEmpty reports whether the bank carries no questions (a cleared bank).
func (b QuestionBank) IsEmpty() bool {
	return len(b.Questions) == 0
}

const (
	// DefaultQuestionCount is drawn when a quiz config does not ask for a count.
	DefaultQuestionCount = 10
	// MaxQuestionCount caps a single quiz.
	MaxQuestionCount = 50
)

// QuizConfig is a player's selection for a new quiz.
type QuizConfig struct {
	Subject       Subject    `json:"subject"`
	Difficulty    Difficulty `json:"difficulty"`
	QuestionCount int        `json:"questionCount"`
}

// Quiz is a set of questions drawn from the bank for one game.
type Quiz struct {
	ID         string     `json:"id"`
	Subject    Subject    `json:"subject,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Participant represents a quiz participant and their accumulated score.
type Participant struct {
	UserID      string
	DisplayName string
	Score       int
	Answered    map[string]bool
	LastUpdated time.Time
	// Connections counts open sockets. Zero means the player left but keeps the tally.
	Connections int
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
	Answered    int    `json:"answered"`
	Connected   bool   `json:"connected"`
}

// Leaderboard captures the ordered scoreboard for a quiz session.
type Leaderboard struct {
	QuizID    string             `json:"quizId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// AnswerSubmission models the scoring signal from clients.
type AnswerSubmission struct {
	QuestionID string
	Answer     string
}

// AnswerResult summarizes the outcome of a submission for a single user.
type AnswerResult struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"correct"`
	Awarded       int    `json:"awarded"`
	TotalScore    int    `json:"totalScore"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
}

// QuizResult is a participant's tally. Finished results are kept in the
// result history.
type QuizResult struct {
	QuizID         string     `json:"quizId"`
	UserID         string     `json:"userId"`
	DisplayName    string     `json:"displayName"`
	Subject        Subject    `json:"subject,omitempty"`
	Difficulty     Difficulty `json:"difficulty,omitempty"`
	Score          int        `json:"score"`
	Answered       int        `json:"answered"`
	TotalQuestions int        `json:"totalQuestions"`
	Percentage     float64    `json:"percentage"`
	CompletedAt    time.Time  `json:"completedAt,omitempty"`
}

// PlayerStanding is a user's all-time total across finished quizzes.
type PlayerStanding struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	TotalScore    int    `json:"totalScore"`
	QuizzesPlayed int    `json:"quizzesPlayed"`
}

// HallOfFame is the all-time leaderboard: users ranked by total score, and
// the best single results.
type HallOfFame struct {
	Players   []PlayerStanding `json:"players"`
	TopScores []QuizResult     `json:"topScores"`
}
