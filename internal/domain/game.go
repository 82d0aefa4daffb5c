package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Game registration rules
const (
	MinPublicationYear = 1400
	DefaultMinPlayers  = 1
	DefaultMaxPlayers  = 10
)

// Game represents a board game in the lending inventory
type Game struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Year         int       `json:"year" db:"year"`
	Category     string    `json:"category" db:"category"`
	MinPlayers   int       `json:"min_players" db:"min_players"`
	MaxPlayers   int       `json:"max_players" db:"max_players"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	Available    bool      `json:"available" db:"available"`
}

func (g Game) String() string {
	status := "available"
	if !g.Available {
		status = "on loan"
	}
	return fmt.Sprintf("%s (%d) - %s - %d-%d players - %s", g.Name, g.Year, g.Category, g.MinPlayers, g.MaxPlayers, status)
}

// RegisterGameRequest carries the fields accepted by game registration.
// Zero player counts are replaced by DefaultMinPlayers / DefaultMaxPlayers
// before validation.
type RegisterGameRequest struct {
	Name       string `json:"name" validate:"notblank"`
	Year       int    `json:"year" validate:"pubyear"`
	Category   string `json:"category" validate:"notblank"`
	MinPlayers int    `json:"min_players" validate:"min=1"`
	MaxPlayers int    `json:"max_players" validate:"gtefield=MinPlayers"`
}

// ApplyDefaults fills in the player range defaults.
func (r *RegisterGameRequest) ApplyDefaults() {
	if r.MinPlayers == 0 {
		r.MinPlayers = DefaultMinPlayers
	}
	if r.MaxPlayers == 0 {
		r.MaxPlayers = DefaultMaxPlayers
	}
}
