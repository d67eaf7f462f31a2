package arena

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/quizarena/quizarena-backend/internal/battle"
)

// Fixed stake per ranked duel: winner gains 8 stars, loser drops 8.
const starsPerMatch = 8

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// RecordMatch persists a finished duel and moves stars. It is invoked by the
// battle service after the room is settled; failures are logged and never
// propagate back into the duel.
func (s *Service) RecordMatch(rec battle.MatchRecord) {
	_, err := s.db.Exec(`
		INSERT INTO arena_matches
			(room_id, game_id, winner_id, loser_id, winner_correct, loser_correct, total_questions, duration_secs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.RoomID, rec.GameID, rec.WinnerID, rec.LoserID,
		rec.WinnerCorrect, rec.LoserCorrect, rec.TotalQuestions, int(rec.Duration.Seconds()))
	if err != nil {
		log.Printf("Failed to record match %s: %v", rec.GameID, err)
		return
	}

	if err := s.applyStars(rec.WinnerID, starsPerMatch); err != nil {
		log.Printf("Failed to award stars to %s: %v", rec.WinnerID, err)
	}
	if err := s.applyStars(rec.LoserID, -starsPerMatch); err != nil {
		log.Printf("Failed to deduct stars from %s: %v", rec.LoserID, err)
	}
	log.Printf("Recorded match %s: %s beat %s (%d questions, %s)",
		rec.GameID, rec.WinnerID, rec.LoserID, rec.TotalQuestions, rec.Duration)
}

func (s *Service) applyStars(playerID string, delta int) error {
	wins, losses := 0, 0
	if delta > 0 {
		wins = 1
	} else {
		losses = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO arena_stats (player_id, wins, losses, stars)
		VALUES ($1, $2, $3, GREATEST(0, $4))
		ON CONFLICT (player_id) DO UPDATE SET
			wins = arena_stats.wins + $2,
			losses = arena_stats.losses + $3,
			stars = GREATEST(0, arena_stats.stars + $4),
			updated_at = NOW()
	`, playerID, wins, losses, delta)
	return err
}

type LeaderboardEntry struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Stars    int    `json:"stars"`
}

func (s *Service) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.Query(`
		SELECT a.player_id, s.username, a.wins, a.losses, a.stars
		FROM arena_stats a
		JOIN students s ON a.player_id = s.id::text
		ORDER BY a.stars DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var leaderboard []LeaderboardEntry
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.PlayerID, &entry.Username, &entry.Wins, &entry.Losses, &entry.Stars); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		leaderboard = append(leaderboard, entry)
	}
	return leaderboard, rows.Err()
}
