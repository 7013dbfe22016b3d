package model

import "github.com/benbeisheim/starchess-backend/internal/chess"

// AIPlayerID is the player id of the computer side in an AI game.
const AIPlayerID = "ai"

type Player struct {
	ID string
}

type ClientPlayer struct {
	ID string `json:"name"`
	// TimeUsed is the side's thinking time in tenths of a second.
	TimeUsed int  `json:"timeUsed"`
	IsAI     bool `json:"isAI"`
}

type MatchFoundEvent struct {
	GameID string     `json:"gameId"`
	Color  chess.Side `json:"color"`
}
