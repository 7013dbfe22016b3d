package model

import (
	"strings"

	"github.com/benbeisheim/starchess-backend/internal/chess"
)

// MoveRequest is a move as sent by clients, in algebraic squares.
type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r MoveRequest) Parse() (from, to chess.Position, err error) {
	if from, err = chess.ParseSquare(r.From); err != nil {
		return from, to, err
	}
	to, err = chess.ParseSquare(r.To)
	return from, to, err
}

type Ply struct {
	Piece          chess.PieceType       `json:"piece"`
	Side           chess.Side            `json:"side"`
	From           string                `json:"from"`
	To             string                `json:"to"`
	CapturedPiece  *chess.PieceType      `json:"capturedPiece"`
	CastleRookMove *chess.CastleRookMove `json:"castleRookMove"`
	Promotion      chess.PieceType       `json:"promotion,omitempty"`
	Notation       string                `json:"notation"`
}

// Move pairs White's ply with Black's reply. BlackPly is nil until Black has
// moved.
type Move struct {
	WhitePly *Ply `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// newPly records a played move. origin is the part of the from-square that
// tells the piece apart from others that could reach the same square.
func newPly(rec chess.MoveRecord, status chess.Status, origin string) Ply {
	ply := Ply{
		Piece:          rec.Type,
		Side:           rec.Side,
		From:           rec.From.String(),
		To:             rec.To.String(),
		CastleRookMove: rec.Castle,
		Promotion:      rec.Promotion,
		Notation:       notation(rec, status, origin),
	}
	if rec.Captured != nil {
		captured := rec.Captured.Type
		ply.CapturedPiece = &captured
	}
	return ply
}

// notation renders a ply in short algebraic form.
func notation(rec chess.MoveRecord, status chess.Status, origin string) string {
	var sb strings.Builder
	switch {
	case rec.Castle != nil && rec.To.Column < rec.From.Column:
		sb.WriteString("O-O")
	case rec.Castle != nil:
		sb.WriteString("O-O-O")
	default:
		sb.WriteString(rec.Type.Notation())
		sb.WriteString(origin)
		if rec.Captured != nil {
			if rec.Type == chess.Pawn {
				sb.WriteString(rec.From.String()[:1])
			}
			sb.WriteByte('x')
		}
		sb.WriteString(rec.To.String())
		if rec.Promotion != "" {
			sb.WriteString("=" + rec.Promotion.Notation())
		}
	}

	switch status {
	case chess.StatusCheckmate:
		sb.WriteByte('#')
	case chess.StatusCheck:
		sb.WriteByte('+')
	}
	return sb.String()
}

// disambiguation returns the file, rank or whole square of from needed to
// set the move apart from same-type pieces that can also reach to.
func disambiguation(b *chess.Chessboard, mover chess.Piece, to chess.Position) string {
	if mover.Type == chess.Pawn || mover.Type == chess.King {
		return ""
	}
	rivals, sameFile, sameRank := false, false, false
	for _, p := range b.PiecesOf(mover.Type, mover.Side) {
		if p.ID == mover.ID || !b.SafeMoves(p.ID).Value(to) {
			continue
		}
		rivals = true
		sameFile = sameFile || p.Position.Column == mover.Position.Column
		sameRank = sameRank || p.Position.Row == mover.Position.Row
	}

	square := mover.Position.String()
	switch {
	case !rivals:
		return ""
	case !sameFile:
		return square[:1]
	case !sameRank:
		return square[1:]
	}
	return square
}
