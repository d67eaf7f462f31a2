package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizarena/quizarena-backend/config"
	"github.com/quizarena/quizarena-backend/db"
)

type Service struct {
	db  *sql.DB
	cfg config.Config
}

func NewService(database *sql.DB, cfg config.Config) *Service {
	return &Service{
		db:  database,
		cfg: cfg,
	}
}

func (s *Service) Register(username, firstName, lastName, password string) (db.Student, error) {
	if username == "" || password == "" {
		return db.Student{}, fmt.Errorf("username and password cannot be empty")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return db.Student{}, err
	}
	studentID := uuid.New()

	query := `
		INSERT INTO students (id, username, first_name, last_name, password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, username, first_name, last_name, created_at
	`
	var student db.Student
	err = s.db.QueryRow(query, studentID, username, firstName, lastName, string(hashedPassword), time.Now()).
		Scan(&student.ID, &student.Username, &student.FirstName, &student.LastName, &student.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return db.Student{}, fmt.Errorf("username already exists")
		}
		return db.Student{}, err
	}
	return student, nil
}

func (s *Service) Login(username, password string) (string, error) {
	var student db.Student
	err := s.db.QueryRow(`
		SELECT id, username, first_name, last_name, password, created_at
		FROM students
		WHERE username = $1
	`, username).Scan(&student.ID, &student.Username, &student.FirstName, &student.LastName, &student.Password, &student.CreatedAt)

	if err != nil {
		return "", errors.New("invalid credentials")
	}
	err = bcrypt.CompareHashAndPassword([]byte(student.Password), []byte(password))
	if err != nil {
		return "", errors.New("invalid credentials")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": student.ID.String(),
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
