package db

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Password  string    `json:"-" db:"password"` // Hashed password
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ArenaMatch is the permanent record of a finished duel.
type ArenaMatch struct {
	ID             int64     `json:"id" db:"id"`
	RoomID         string    `json:"room_id" db:"room_id"`
	GameID         string    `json:"game_id" db:"game_id"`
	WinnerID       string    `json:"winner_id" db:"winner_id"`
	LoserID        string    `json:"loser_id" db:"loser_id"`
	WinnerCorrect  int       `json:"winner_correct" db:"winner_correct"`
	LoserCorrect   int       `json:"loser_correct" db:"loser_correct"`
	TotalQuestions int       `json:"total_questions" db:"total_questions"`
	DurationSecs   int       `json:"duration_secs" db:"duration_secs"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
