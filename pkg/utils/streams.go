package utils

import (
	"github.com/ostnam/matlang/pkg/tokens"
)

// Peek returns a pointer to the element at pos, or nil past the end.
func Peek[T any](str []T, pos int) *T {
	if pos >= 0 && pos < len(str) {
		return &str[pos]
	}
	return nil
}

// Previous returns the element right before pos.
func Previous[T any](str []T, pos int) *T {
	return Peek(str, pos-1)
}

// Advance returns the element at pos and moves past it.
func Advance[T any](str []T, pos *int) *T {
	if *pos >= len(str) || *pos < 0 {
		return nil
	}
	res := &str[*pos]
	*pos++
	return res
}

func IsAtEnd[T any](str []T, pos int) bool {
	return pos >= len(str)
}

// Match consumes the element at pos if it equals one of vals.
func Match[T comparable](slice []T, pos *int, vals ...T) bool {
	if *pos >= len(slice) {
		return false
	}
	for _, val := range vals {
		if slice[*pos] == val {
			*pos++
			return true
		}
	}
	return false
}

// MatchTokenType consumes the token at pos if its type is one of vals.
func MatchTokenType(slice []tokens.Token, pos *int, vals ...tokens.TokType) bool {
	if PeekMatchesTokType(slice, *pos, vals...) {
		*pos++
		return true
	}
	return false
}

func PeekMatchesTokType(slice []tokens.Token, pos int, vals ...tokens.TokType) bool {
	peeked := Peek(slice, pos)
	if peeked == nil {
		return false
	}
	for _, val := range vals {
		if val == peeked.Type {
			return true
		}
	}
	return false
}
