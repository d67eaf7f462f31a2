package battle

import (
	"log"
	"math/rand"
)

// shuffleCards returns a Fisher-Yates shuffled copy.
func shuffleCards(cards []Card) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// drawCard moves the top deck card into a player's hand. An empty deck first
// reclaims the discard pile; if both are empty the draw is a no-op and the
// hand shrinks below its usual size.
func (r *Room) drawCard(p *Player) {
	if len(r.Deck) == 0 && len(r.Discard) > 0 {
		r.Deck = shuffleCards(r.Discard)
		r.Discard = nil
		log.Printf("Room %s reshuffled %d discarded cards into the deck", r.RoomID, len(r.Deck))
	}
	if len(r.Deck) == 0 {
		log.Printf("Room %s deck exhausted, no card drawn for %s", r.RoomID, p.UserID)
		return
	}
	top := r.Deck[len(r.Deck)-1]
	r.Deck = r.Deck[:len(r.Deck)-1]
	p.Cards = append(p.Cards, top)
}
