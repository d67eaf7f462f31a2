package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string
	DBUrl         string
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	AcceptWindow  time.Duration // matchmaking acceptance window
	AnswerWindow  time.Duration // per-turn answer window
}

func LoadConfig() Config {
	err := godotenv.Load()

	if err != nil {
		log.Println("No .env file found. Using environment variables.")
	}

	return Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DBUrl:         os.Getenv("DB_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AcceptWindow:  getSecondsEnv("MATCH_ACCEPT_SECONDS", 30*time.Second),
		AnswerWindow:  getSecondsEnv("ANSWER_TIMEOUT_SECONDS", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getSecondsEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		log.Printf("Invalid %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return time.Duration(secs) * time.Second
}
