package main

import (
	"database/sql"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	"github.com/quizarena/quizarena-backend/config"
	"github.com/quizarena/quizarena-backend/internal/arena"
	"github.com/quizarena/quizarena-backend/internal/auth"
	"github.com/quizarena/quizarena-backend/internal/battle"
	"github.com/quizarena/quizarena-backend/internal/match"
	"github.com/quizarena/quizarena-backend/internal/matchmaking"
	"github.com/quizarena/quizarena-backend/internal/student"
	"github.com/quizarena/quizarena-backend/internal/ws"
	rdbPkg "github.com/quizarena/quizarena-backend/pkg/redis"
	wsPkg "github.com/quizarena/quizarena-backend/pkg/websocket"
)

func main() {
	cfg := config.LoadConfig()

	database, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	defer database.Close()

	rdb := rdbPkg.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)

	// Accounts
	authService := auth.NewService(database, cfg)
	authHandler := auth.NewAuthHandler(authService)

	// Arena history and stars
	arenaService := arena.NewService(database)
	arenaHandler := arena.NewHandler(arenaService)

	// Battle rooms
	battleService := battle.NewService(rdb, database, arenaService)
	battleHandler := battle.NewHandler(battleService)

	// Matchmaking core with its two external collaborators
	resolver := student.NewResolver(database)
	notifier := ws.NewRedisNotifier(rdb)
	queue := matchmaking.NewService(resolver, notifier)

	matchHandler := match.NewHandler(queue, battleService, resolver, cfg.AcceptWindow)

	// Websocket gateways
	generalHub := wsPkg.NewGeneralHub()
	generalHandler := ws.NewGeneralHandler(generalHub, queue)
	gameHub := wsPkg.NewHub(rdb)
	gameHandler := ws.NewHandler(gameHub, battleService, cfg.AnswerWindow)

	worker := ws.NewNotificationWorker(rdb, generalHub)
	go worker.Run()

	http.HandleFunc("/api/v1/auth/register", authHandler.Register)
	http.HandleFunc("/api/v1/auth/login", authHandler.Login)

	http.HandleFunc("/api/v1/match/queue", matchHandler.JoinQueue)
	http.HandleFunc("/api/v1/match/cancel", matchHandler.Cancel)
	http.HandleFunc("/api/v1/match/status", matchHandler.Status)
	http.HandleFunc("/api/v1/match/accept", matchHandler.Accept)
	http.HandleFunc("/api/v1/match/ban-status", matchHandler.BanStatus)

	http.HandleFunc("/api/v1/battle/room", battleHandler.GetRoom)

	http.HandleFunc("/api/v1/arena/leaderboard", arenaHandler.GetLeaderboard)

	http.HandleFunc("/ws/general", generalHandler.ServeGeneralWS)
	http.HandleFunc("/ws/game", gameHandler.ServeWS)

	log.Println("Server started at", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, nil))
}
