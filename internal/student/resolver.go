package student

import (
	"database/sql"
	"log"
	"strings"
)

const unknownPlayer = "Unknown Player"

// Resolver turns opaque player ids into display names. It never fails:
// missing students and database errors both yield a fallback label.
type Resolver struct {
	db *sql.DB
}

func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{db: db}
}

func (r *Resolver) ResolvePlayerName(playerID string) string {
	var firstName, lastName string
	err := r.db.QueryRow(`
		SELECT first_name, last_name
		FROM students
		WHERE id = $1
	`, playerID).Scan(&firstName, &lastName)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Failed to resolve name for %s: %v", playerID, err)
		}
		return unknownPlayer
	}
	name := strings.TrimSpace(firstName + " " + lastName)
	if name == "" {
		return unknownPlayer
	}
	return name
}
