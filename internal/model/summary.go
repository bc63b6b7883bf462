package model

import "time"

// Summary is the end-of-game report published with the game-end event
type Summary struct {
	GameID     string        `json:"game_id"`
	Winner     Winner        `json:"winner"`
	Reason     string        `json:"reason"`
	Days       int           `json:"days"`
	Formation  string        `json:"formation"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Players    []PlayerFinal `json:"players"`
	Executions []int         `json:"executions"` // Executed player per day, NoTarget when nobody was executed
	Attacks    []int         `json:"attacks"`    // Player killed per night, NoTarget when the attack failed
}

// PlayerFinal is one row of the role reveal
type PlayerFinal struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Team   Team   `json:"team"`
	Status Status `json:"status"`
	Mayor  bool   `json:"mayor,omitempty"`
}

// Survivors counts living players in the reveal
func (s Summary) Survivors() int {
	n := 0
	for _, p := range s.Players {
		if p.Status == StatusAlive {
			n++
		}
	}
	return n
}
