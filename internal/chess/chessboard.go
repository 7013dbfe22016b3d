package chess

import "fmt"

// Column constants of the castling rule. The King starts on column 4 and
// castles toward column 1 (king side) or column 8 (queen side).
const (
	kingHomeColumn = 4
)

type castlingRule struct {
	rookColumn       int
	rookTargetColumn int
	kingTargetColumn int
	transitColumn    int
}

var castlingRules = []castlingRule{
	{rookColumn: 1, rookTargetColumn: 3, kingTargetColumn: 2, transitColumn: 3},
	{rookColumn: 8, rookTargetColumn: 5, kingTargetColumn: 6, transitColumn: 5},
}

// Chessboard is a complete board state: the live pieces, one occupancy
// bitboard per side and the side to move. Copies made with Clone are fully
// independent and keep piece ids, so a move found on a copy can be replayed
// on the original.
type Chessboard struct {
	blackLocations Bitboard
	whiteLocations Bitboard
	movingSide     Side
	pieces         []*Piece
	nextID         PieceID
}

// NewChessboard returns an empty board with White to move.
func NewChessboard() *Chessboard {
	return &Chessboard{
		movingSide: White,
		nextID:     1,
	}
}

// MakeCopyOfChessboard returns a deep copy of b.
func MakeCopyOfChessboard(b *Chessboard) *Chessboard {
	return b.Clone()
}

// Clone copies the occupancy, the side to move and every piece record in one
// contiguous block. Move-shape tables are package-level and shared.
func (b *Chessboard) Clone() *Chessboard {
	nb := &Chessboard{
		blackLocations: b.blackLocations,
		whiteLocations: b.whiteLocations,
		movingSide:     b.movingSide,
		nextID:         b.nextID,
		pieces:         make([]*Piece, len(b.pieces)),
	}
	records := make([]Piece, len(b.pieces))
	for i, p := range b.pieces {
		records[i] = *p
		nb.pieces[i] = &records[i]
	}
	return nb
}

func (b *Chessboard) MovingSide() Side {
	return b.movingSide
}

// SetMovingSide sets the side to move without running per-turn processing.
// It is meant for board setup.
func (b *Chessboard) SetMovingSide(side Side) {
	b.movingSide = side
}

// ChangeMovingSide passes the turn and runs per-turn processing on every piece
// of the side now moving.
func (b *Chessboard) ChangeMovingSide() {
	b.movingSide = b.movingSide.Opposite()
	for _, p := range b.pieces {
		if p.Side == b.movingSide {
			perTurn(p)
		}
	}
}

// Locations returns the occupancy bitboard of a side.
func (b *Chessboard) Locations(side Side) Bitboard {
	return *b.locations(side)
}

func (b *Chessboard) locations(side Side) *Bitboard {
	if side == Black {
		return &b.blackLocations
	}
	return &b.whiteLocations
}

func (b *Chessboard) occupied(p Position) bool {
	return b.blackLocations.Value(p) || b.whiteLocations.Value(p)
}

// AddPiece places a new piece on the board, replacing any piece already on
// that square, and returns its id.
func (b *Chessboard) AddPiece(t PieceType, side Side, at Position) PieceID {
	if !at.Valid() {
		panic(fmt.Sprintf("chess: cannot add %s %s off the board at %s", side, t, at))
	}
	if existing := b.pieceAt(at); existing != nil {
		b.removePiece(existing)
	}
	piece := &Piece{
		ID:              b.nextID,
		Type:            t,
		Side:            side,
		Position:        at,
		InitialPosition: at,
		CanCastle:       t == King || t == Rook,
	}
	b.nextID++
	b.pieces = append(b.pieces, piece)
	b.locations(side).Set(at)
	return piece.ID
}

func (b *Chessboard) removePiece(piece *Piece) {
	for i, p := range b.pieces {
		if p == piece {
			b.locations(piece.Side).Clear(piece.Position)
			b.pieces = append(b.pieces[:i], b.pieces[i+1:]...)
			return
		}
	}
}

// KillPieceAtPosition removes whatever stands on the square.
func (b *Chessboard) KillPieceAtPosition(at Position) (Piece, bool) {
	victim := b.pieceAt(at)
	if victim == nil {
		return Piece{}, false
	}
	b.removePiece(victim)
	return *victim, true
}

func (b *Chessboard) pieceAt(at Position) *Piece {
	if !at.Valid() || !b.occupied(at) {
		return nil
	}
	for _, p := range b.pieces {
		if p.Position == at {
			return p
		}
	}
	return nil
}

func (b *Chessboard) mustPiece(id PieceID) *Piece {
	for _, p := range b.pieces {
		if p.ID == id {
			return p
		}
	}
	panic(fmt.Sprintf("chess: piece %d is not on this board", id))
}

// PieceAt returns a copy of the piece on the square.
func (b *Chessboard) PieceAt(at Position) (Piece, bool) {
	if p := b.pieceAt(at); p != nil {
		return *p, true
	}
	return Piece{}, false
}

// Piece returns a copy of the piece with the given id.
func (b *Chessboard) Piece(id PieceID) (Piece, bool) {
	for _, p := range b.pieces {
		if p.ID == id {
			return *p, true
		}
	}
	return Piece{}, false
}

// Pieces returns copies of the live pieces in board order.
func (b *Chessboard) Pieces() []Piece {
	out := make([]Piece, len(b.pieces))
	for i, p := range b.pieces {
		out[i] = *p
	}
	return out
}

func (b *Chessboard) PiecesOf(t PieceType, side Side) []Piece {
	var out []Piece
	for _, p := range b.pieces {
		if p.Type == t && p.Side == side {
			out = append(out, *p)
		}
	}
	return out
}

func (b *Chessboard) king(side Side) *Piece {
	for _, p := range b.pieces {
		if p.Type == King && p.Side == side {
			return p
		}
	}
	panic(fmt.Sprintf("chess: no %s king on the board", side))
}

// MoveRecord describes everything a call to MoveTo changed.
type MoveRecord struct {
	PieceID   PieceID         `json:"pieceId"`
	Type      PieceType       `json:"type"`
	Side      Side            `json:"side"`
	From      Position        `json:"from"`
	To        Position        `json:"to"`
	Captured  *Piece          `json:"captured,omitempty"`
	EnPassant bool            `json:"enPassant,omitempty"`
	Castle    *CastleRookMove `json:"castle,omitempty"`
	Promotion PieceType       `json:"promotion,omitempty"`
	// PromotedID is the id of the piece that replaced a promoted pawn.
	PromotedID PieceID `json:"promotedId,omitempty"`
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// MoveTo moves a piece, kills anything on the target square and runs the
// piece's post-move actions. It does not pass the turn.
func (b *Chessboard) MoveTo(id PieceID, to Position) MoveRecord {
	piece := b.mustPiece(id)
	rec := MoveRecord{
		PieceID: piece.ID,
		Type:    piece.Type,
		Side:    piece.Side,
		From:    piece.Position,
		To:      to,
	}
	b.moveTo(piece, to, &rec)
	return rec
}

func (b *Chessboard) moveTo(piece *Piece, to Position, rec *MoveRecord) {
	if !to.Valid() {
		panic(fmt.Sprintf("chess: cannot move %s off the board to %s", piece, to))
	}
	from := piece.Position
	if victim := b.pieceAt(to); victim != nil && victim != piece {
		b.removePiece(victim)
		if rec != nil {
			captured := *victim
			rec.Captured = &captured
		}
	}
	locs := b.locations(piece.Side)
	locs.Clear(from)
	locs.Set(to)
	piece.Position = to

	b.postMove(piece, from, rec)
}

func (b *Chessboard) postMove(piece *Piece, from Position, rec *MoveRecord) {
	switch piece.Type {
	case King:
		b.postMoveKing(piece, from, rec)
	case Rook:
		piece.CanCastle = false
	case Pawn:
		b.postMovePawn(piece, from, rec)
	}
}

func (b *Chessboard) postMoveKing(king *Piece, from Position, rec *MoveRecord) {
	if !king.CanCastle {
		return
	}
	king.CanCastle = false
	if from.Column != kingHomeColumn || king.Position.Row != from.Row {
		return
	}
	for _, rule := range castlingRules {
		if king.Position.Column != rule.kingTargetColumn {
			continue
		}
		rook := b.pieceAt(Position{Column: rule.rookColumn, Row: from.Row})
		if rook == nil || rook.Type != Rook || rook.Side != king.Side {
			return
		}
		rookFrom := rook.Position
		rookTo := Position{Column: rule.rookTargetColumn, Row: from.Row}
		b.moveTo(rook, rookTo, nil)
		if rec != nil {
			rec.Castle = &CastleRookMove{From: rookFrom, To: rookTo}
		}
		return
	}
}

func (b *Chessboard) postMovePawn(pawn *Piece, from Position, rec *MoveRecord) {
	forward := pawn.Side.Forward()

	if from == pawn.InitialPosition && pawn.Position == pawn.InitialPosition.Offset(0, 2*forward) {
		pawn.AllowEnPassantCapture = true
	}

	behind := pawn.Position.Offset(0, -forward)
	if passed := b.pieceAt(behind); passed != nil && passed.Type == Pawn &&
		passed.Side != pawn.Side && passed.AllowEnPassantCapture {
		b.removePiece(passed)
		if rec != nil {
			captured := *passed
			rec.Captured = &captured
			rec.EnPassant = true
		}
	}

	if pawn.Position.Row == pawn.Side.PromotionRow() {
		at := pawn.Position
		b.removePiece(pawn)
		queen := b.AddPiece(Queen, pawn.Side, at)
		b.mustPiece(queen).CanCastle = false
		if rec != nil {
			rec.Promotion = Queen
			rec.PromotedID = queen
		}
	}
}

// perTurn runs at the start of each of the piece's own turns. En-passant
// eligibility lasts exactly one enemy turn.
func perTurn(p *Piece) {
	if p.Type == Pawn {
		p.AllowEnPassantCapture = false
	}
}

// Moves returns the piece's moves for the current board state, ignoring
// whether they leave its own King in check.
func (b *Chessboard) Moves(id PieceID) Bitboard {
	return b.refine(b.mustPiece(id), true)
}

func (b *Chessboard) refine(piece *Piece, withCastling bool) Bitboard {
	shape := piece.shape()
	friendly := b.Locations(piece.Side)
	enemy := b.Locations(piece.Side.Opposite())

	if piece.Type == Pawn {
		return b.refinePawn(piece, shape, friendly, enemy)
	}

	moves := shape.ComputeRayIntersections(enemy, piece.Position, true)
	moves = moves.ComputeRayIntersections(friendly, piece.Position, false)
	if piece.Type == King && withCastling {
		b.addCastling(piece, &moves)
	}
	return moves
}

func (b *Chessboard) refinePawn(pawn *Piece, shape, friendly, enemy Bitboard) Bitboard {
	at := pawn.Position
	forward := pawn.Side.Forward()

	moves := shape.ComputeRayIntersections(friendly, at, false)
	moves = moves.ComputeRayIntersections(enemy, at, false)

	for _, dColumn := range []int{-1, 1} {
		diagonal := at.Offset(dColumn, forward)
		if diagonal.Valid() && enemy.Value(diagonal) {
			moves.Set(diagonal)
		}

		adjacent := at.Offset(dColumn, 0)
		if !adjacent.Valid() || !enemy.Value(adjacent) {
			continue
		}
		if passed := b.pieceAt(adjacent); passed != nil && passed.Type == Pawn && passed.AllowEnPassantCapture {
			moves.Set(diagonal)
		}
	}
	return moves
}

// addCastling is only evaluated for the side to move, which also keeps check
// detection from recursing into it.
func (b *Chessboard) addCastling(king *Piece, moves *Bitboard) {
	if b.movingSide != king.Side || !king.CanCastle || king.Position.Column != kingHomeColumn {
		return
	}
	if b.IsKingInCheck(king.Side) {
		return
	}
	row := king.Position.Row
	for _, rule := range castlingRules {
		rookAt := Position{Column: rule.rookColumn, Row: row}
		rook := b.pieceAt(rookAt)
		if rook == nil || rook.Type != Rook || rook.Side != king.Side || !rook.CanCastle {
			continue
		}
		if !b.emptyBetween(king.Position, rookAt) {
			continue
		}
		if !b.IsMoveSafe(king.ID, Position{Column: rule.transitColumn, Row: row}) {
			continue
		}
		moves.Set(Position{Column: rule.kingTargetColumn, Row: row})
	}
}

// emptyBetween reports whether every square strictly between two squares of
// the same row is empty.
func (b *Chessboard) emptyBetween(a, c Position) bool {
	step := sign(c.Column - a.Column)
	for p := a.Offset(step, 0); p != c; p = p.Offset(step, 0) {
		if b.occupied(p) {
			return false
		}
	}
	return true
}

// IsMoveSafe reports whether moving the piece to the square leaves its own
// King out of check. The move is tried on a copy.
func (b *Chessboard) IsMoveSafe(id PieceID, to Position) bool {
	piece := b.mustPiece(id)
	trial := b.Clone()
	trial.moveTo(trial.mustPiece(id), to, nil)
	return !trial.IsKingInCheck(piece.Side)
}

// SafeMoves returns the piece's moves that do not leave its own King in check.
func (b *Chessboard) SafeMoves(id PieceID) Bitboard {
	moves := b.Moves(id)
	for _, to := range moves.Positions() {
		if !b.IsMoveSafe(id, to) {
			moves.Clear(to)
		}
	}
	return moves
}

// IsKingInCheck reports whether any enemy piece can reach the side's King.
// Pawns on the King's column are ignored since they only attack diagonally.
func (b *Chessboard) IsKingInCheck(side Side) bool {
	king := b.king(side)
	for _, p := range b.pieces {
		if p.Side == side {
			continue
		}
		if p.Type == Pawn && p.Position.Column == king.Position.Column {
			continue
		}
		if b.refine(p, false).Value(king.Position) {
			return true
		}
	}
	return false
}

func (b *Chessboard) hasSafeMove(side Side) bool {
	for _, p := range b.snapshot() {
		if p.Side == side && !b.SafeMoves(p.ID).IsEmpty() {
			return true
		}
	}
	return false
}

// snapshot guards iteration against the piece list changing underneath.
func (b *Chessboard) snapshot() []*Piece {
	out := make([]*Piece, len(b.pieces))
	copy(out, b.pieces)
	return out
}

func (b *Chessboard) IsKingInCheckmate(side Side) bool {
	return b.IsKingInCheck(side) && !b.hasSafeMove(side)
}

// IsStalemate reports a side that is not in check but has no safe move.
func (b *Chessboard) IsStalemate(side Side) bool {
	return !b.IsKingInCheck(side) && !b.hasSafeMove(side)
}

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCheck     Status = "check"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
)

func (b *Chessboard) Status(side Side) Status {
	inCheck := b.IsKingInCheck(side)
	canMove := b.hasSafeMove(side)
	switch {
	case inCheck && !canMove:
		return StatusCheckmate
	case !canMove:
		return StatusStalemate
	case inCheck:
		return StatusCheck
	}
	return StatusOngoing
}

// LegalMove is a safe move of the side to move.
type LegalMove struct {
	PieceID PieceID   `json:"pieceId"`
	Type    PieceType `json:"type"`
	From    Position  `json:"from"`
	To      Position  `json:"to"`
}

func (m LegalMove) String() string {
	return m.From.String() + m.To.String()
}

// LegalMoves lists the safe moves of the side to move in board order.
func (b *Chessboard) LegalMoves() []LegalMove {
	var out []LegalMove
	for _, p := range b.snapshot() {
		if p.Side != b.movingSide {
			continue
		}
		for _, to := range b.SafeMoves(p.ID).Positions() {
			out = append(out, LegalMove{PieceID: p.ID, Type: p.Type, From: p.Position, To: to})
		}
	}
	return out
}

// Validate checks that each side has exactly one King and that the
// occupancy bitboards match the piece list.
func (b *Chessboard) Validate() error {
	kings := map[Side]int{}
	var black, white Bitboard
	for _, p := range b.pieces {
		if p.Type == King {
			kings[p.Side]++
		}
		locs := &white
		if p.Side == Black {
			locs = &black
		}
		if black.Value(p.Position) || white.Value(p.Position) {
			return fmt.Errorf("%w: two pieces on %s", ErrInvalidPlacement, p.Position)
		}
		locs.Set(p.Position)
	}
	for _, side := range []Side{White, Black} {
		if kings[side] != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrInvalidPlacement, side, kings[side])
		}
	}
	if black != b.blackLocations || white != b.whiteLocations {
		return fmt.Errorf("%w: occupancy out of sync with pieces", ErrInvalidPlacement)
	}
	return nil
}
