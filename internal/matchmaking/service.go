package matchmaking

import (
	"fmt"
	"log"
	"sync"
)

// NameResolver looks up a student's display name. Implementations must never
// fail; they return a fallback label instead.
type NameResolver interface {
	ResolvePlayerName(playerID string) string
}

// Notifier delivers a fire-and-forget event to a single player. Delivery
// failures are the implementation's problem, never the caller's.
type Notifier interface {
	PushToPlayer(playerID, event string, payload interface{})
}

// MatchEvent is the payload for match_found and match_ready pushes.
type MatchEvent struct {
	LobbyID      string `json:"lobbyId"`
	Opponent     string `json:"opponent"`
	OpponentName string `json:"opponentName"`
	Matched      bool   `json:"matched,omitempty"`
	Ready        bool   `json:"ready,omitempty"`
}

type EnqueueResult struct {
	Matched      bool       `json:"matched"`
	Banned       bool       `json:"banned,omitempty"`
	Ban          *BanStatus `json:"ban,omitempty"`
	Opponent     string     `json:"opponent,omitempty"`
	OpponentName string     `json:"opponentName,omitempty"`
	LobbyID      string     `json:"lobbyId,omitempty"`
}

type AcceptResult struct {
	Accepted bool     `json:"accepted,omitempty"`
	Ready    bool     `json:"ready,omitempty"`
	LobbyID  string   `json:"lobbyId,omitempty"`
	Players  []string `json:"-"` // both sides, set when Ready
}

// Service owns every matchmaking structure: the waiting list, the symmetric
// match map, lobby assignments, acceptance records and the ban ledger. One
// instance per process; every public method takes the single mutex, so each
// mutation is one synchronous step. External calls (name lookup, pushes)
// happen only after the lock is released.
type Service struct {
	mu           sync.Mutex
	queue        []string
	matches      map[string]string          // playerID -> opponentID, always symmetric
	lobbies      map[string]string          // playerID -> lobbyID
	accepts      map[string]map[string]bool // lobbyID -> players who accepted
	bans         *BanLedger
	lobbyCounter int

	names    NameResolver
	notifier Notifier
}

func NewService(names NameResolver, notifier Notifier) *Service {
	return &Service{
		matches:  make(map[string]string),
		lobbies:  make(map[string]string),
		accepts:  make(map[string]map[string]bool),
		bans:     NewBanLedger(),
		names:    names,
		notifier: notifier,
	}
}

// Enqueue adds a player to the waiting list, or pairs them with the oldest
// waiter. Re-entering with a pairing still on record abandons that pairing.
func (s *Service) Enqueue(playerID string) EnqueueResult {
	s.mu.Lock()

	if ban, banned := s.bans.Check(playerID); banned {
		s.mu.Unlock()
		log.Printf("Rejected banned player %s (%ds remaining)", playerID, ban.Seconds)
		return EnqueueResult{Matched: false, Banned: true, Ban: &ban}
	}

	// Queue re-entry means "abandon previous pairing".
	if _, paired := s.matches[playerID]; paired {
		s.teardownMatchLocked(playerID)
	}

	if s.waitingLocked(playerID) {
		s.mu.Unlock()
		return EnqueueResult{Matched: false}
	}

	if len(s.queue) > 0 {
		opponentID := s.queue[0]
		s.queue = s.queue[1:]
		if opponentID == playerID {
			// Should be impossible; keep the player waiting rather than
			// pairing them with themselves.
			s.queue = append(s.queue, playerID)
			s.mu.Unlock()
			return EnqueueResult{Matched: false}
		}
		s.matches[playerID] = opponentID
		s.matches[opponentID] = playerID
		lobbyID := s.nextLobbyIDLocked()
		s.lobbies[playerID] = lobbyID
		s.lobbies[opponentID] = lobbyID
		s.mu.Unlock()

		log.Printf("Matched %s with %s in %s", playerID, opponentID, lobbyID)
		opponentName := s.emitMatchFound(playerID, opponentID, lobbyID)
		return EnqueueResult{
			Matched:      true,
			Opponent:     opponentID,
			OpponentName: opponentName,
			LobbyID:      lobbyID,
		}
	}

	s.queue = append(s.queue, playerID)
	s.mu.Unlock()
	return EnqueueResult{Matched: false}
}

// Dequeue removes a player from the waiting list and tears down any pairing
// and acceptance they are part of. Calling it for an absent player is a no-op.
func (s *Service) Dequeue(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dequeueLocked(playerID)
}

// Status reports the player's current matchmaking position without side
// effects beyond expiring a stale ban.
func (s *Service) Status(playerID string) EnqueueResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ban, banned := s.bans.Check(playerID); banned {
		return EnqueueResult{Matched: false, Banned: true, Ban: &ban}
	}
	if opponent, ok := s.matches[playerID]; ok && opponent != playerID {
		lobbyID := s.lobbies[playerID]
		if lobbyID == "" {
			lobbyID = s.lobbies[opponent]
		}
		return EnqueueResult{Matched: true, Opponent: opponent, LobbyID: lobbyID}
	}
	return EnqueueResult{Matched: false}
}

// Accept records one side's confirmation. The lobby becomes ready exactly
// when both members of its match have accepted; the match_ready event goes
// out to both sides at that moment.
func (s *Service) Accept(lobbyID, playerID string) AcceptResult {
	s.mu.Lock()

	if s.lobbies[playerID] != lobbyID {
		// Stale or foreign lobby: ignore, state unchanged.
		s.mu.Unlock()
		return AcceptResult{}
	}
	if s.accepts[lobbyID] == nil {
		s.accepts[lobbyID] = make(map[string]bool)
	}
	s.accepts[lobbyID][playerID] = true

	opponent := s.matches[playerID]
	ready := opponent != "" && s.accepts[lobbyID][opponent]
	s.mu.Unlock()

	if !ready {
		return AcceptResult{Accepted: true}
	}

	log.Printf("Lobby %s ready: %s vs %s", lobbyID, playerID, opponent)
	s.emitMatchReady(playerID, opponent, lobbyID)
	return AcceptResult{
		Accepted: true,
		Ready:    true,
		LobbyID:  lobbyID,
		Players:  []string{playerID, opponent},
	}
}

// IsReady reports whether both sides of a lobby have accepted.
func (s *Service) IsReady(lobbyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accepts[lobbyID]
	if len(acc) < 2 {
		return false
	}
	for _, ok := range acc {
		if !ok {
			return false
		}
	}
	return true
}

// ExpireAcceptance is fired by the gateway's 30s acceptance timer. Sides
// that never accepted are penalized and removed; a side that did accept is
// returned to the front of the waiting list.
func (s *Service) ExpireAcceptance(lobbyID string) {
	s.mu.Lock()

	var members []string
	for p, l := range s.lobbies {
		if l == lobbyID {
			members = append(members, p)
		}
	}
	if len(members) == 0 {
		s.mu.Unlock()
		return
	}
	acc := s.accepts[lobbyID]
	allAccepted := len(members) == 2
	for _, p := range members {
		if !acc[p] {
			allAccepted = false
		}
	}
	if allAccepted {
		// Both confirmed before the timer fired; nothing to do.
		s.mu.Unlock()
		return
	}

	var penalized []string
	for _, p := range members {
		delete(s.matches, p)
		delete(s.lobbies, p)
		if acc[p] {
			if !s.waitingLocked(p) {
				s.queue = append([]string{p}, s.queue...)
			}
		} else {
			s.bans.RecordOffense(p)
			s.removeWaitingLocked(p)
			penalized = append(penalized, p)
		}
	}
	delete(s.accepts, lobbyID)
	s.mu.Unlock()

	log.Printf("Acceptance window expired for %s, penalized %v", lobbyID, penalized)
}

// PenalizeAndRemove records an offense (declined or timed-out match) and
// removes the player from all matchmaking state. Returns the resulting ban.
func (s *Service) PenalizeAndRemove(playerID string) BanStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bans.RecordOffense(playerID)
	s.dequeueLocked(playerID)
	ban, _ := s.bans.Check(playerID)
	return ban
}

// BanStatus reports the active ban for a player, if any.
func (s *Service) BanStatus(playerID string) (BanStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bans.Check(playerID)
}

// ClearBan lifts a player's penalty early.
func (s *Service) ClearBan(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans.Clear(playerID)
}

// QueueLength reports how many players are currently waiting.
func (s *Service) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Service) waitingLocked(playerID string) bool {
	for _, id := range s.queue {
		if id == playerID {
			return true
		}
	}
	return false
}

func (s *Service) removeWaitingLocked(playerID string) {
	for i, id := range s.queue {
		if id == playerID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

func (s *Service) teardownMatchLocked(playerID string) {
	opponent, ok := s.matches[playerID]
	if !ok {
		return
	}
	lobbyID := s.lobbies[playerID]
	if lobbyID == "" {
		lobbyID = s.lobbies[opponent]
	}
	delete(s.matches, playerID)
	delete(s.matches, opponent)
	delete(s.lobbies, playerID)
	delete(s.lobbies, opponent)
	if lobbyID != "" {
		delete(s.accepts, lobbyID)
	}
}

func (s *Service) dequeueLocked(playerID string) {
	s.removeWaitingLocked(playerID)
	s.teardownMatchLocked(playerID)
	// Purge any stray acceptance entries left by torn-down lobbies.
	for lobbyID, acc := range s.accepts {
		if acc[playerID] {
			delete(acc, playerID)
			if len(acc) == 0 {
				delete(s.accepts, lobbyID)
			}
		}
	}
}

func (s *Service) nextLobbyIDLocked() string {
	s.lobbyCounter++
	return fmt.Sprintf("lobby_%d", s.lobbyCounter)
}

func (s *Service) emitMatchFound(p1, p2, lobbyID string) string {
	p1Name := s.names.ResolvePlayerName(p1)
	p2Name := s.names.ResolvePlayerName(p2)
	s.notifier.PushToPlayer(p1, "match_found", MatchEvent{
		LobbyID: lobbyID, Opponent: p2, OpponentName: p2Name, Matched: true,
	})
	s.notifier.PushToPlayer(p2, "match_found", MatchEvent{
		LobbyID: lobbyID, Opponent: p1, OpponentName: p1Name, Matched: true,
	})
	return p2Name
}

func (s *Service) emitMatchReady(p1, p2, lobbyID string) {
	p1Name := s.names.ResolvePlayerName(p1)
	p2Name := s.names.ResolvePlayerName(p2)
	s.notifier.PushToPlayer(p1, "match_ready", MatchEvent{
		LobbyID: lobbyID, Opponent: p2, OpponentName: p2Name, Ready: true,
	})
	s.notifier.PushToPlayer(p2, "match_ready", MatchEvent{
		LobbyID: lobbyID, Opponent: p1, OpponentName: p1Name, Ready: true,
	})
}
