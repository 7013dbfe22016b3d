package chess

import (
	"encoding/json"
	"fmt"
)

type Side uint8

const (
	Black Side = iota
	White
)

func (s Side) Opposite() Side {
	if s == White {
		return Black
	}
	return White
}

// Forward is the row delta of a step toward the enemy.
func (s Side) Forward() int {
	if s == White {
		return 1
	}
	return -1
}

// HomeRow is the row the side's back rank stands on.
func (s Side) HomeRow() int {
	if s == White {
		return MinCoordinate
	}
	return MaxCoordinate
}

// PromotionRow is the row on which the side's pawns promote.
func (s Side) PromotionRow() int {
	return s.Opposite().HomeRow()
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return Black, fmt.Errorf("%w %q", ErrInvalidSide, s)
}

func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSide(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
