package sqlpager

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Direction defines which way a feed moves through the result set.
type Direction string

const (
	DirectionForward  Direction = "next"
	DirectionBackward Direction = "prev"
)

var _directionAliases = map[string]Direction{
	"n":        DirectionForward,
	"f":        DirectionForward,
	"next":     DirectionForward,
	"forward":  DirectionForward,
	"forth":    DirectionForward,
	"p":        DirectionBackward,
	"b":        DirectionBackward,
	"prev":     DirectionBackward,
	"previous": DirectionBackward,
	"back":     DirectionBackward,
	"backward": DirectionBackward,
}

func (d Direction) Valid() bool {
	return d == DirectionForward || d == DirectionBackward
}

// IsForward reports whether d is DirectionForward. Anything else, including
// an invalid direction, counts as backward.
func (d Direction) IsForward() bool {
	return d == DirectionForward
}

// DirectionOf maps the boolean "forward" flag onto a Direction.
func DirectionOf(forward bool) Direction {
	return lo.Ternary(forward, DirectionForward, DirectionBackward)
}

// ParseDirection resolves a user supplied alias such as "n", "next", "back".
// Matching is case-insensitive.
func ParseDirection(s string) (Direction, error) {
	alias := strings.ToLower(strings.TrimSpace(s))
	if d, ok := _directionAliases[alias]; ok {
		return d, nil
	}

	aliases := lo.Keys(_directionAliases)
	sort.Strings(aliases)

	return "", fmt.Errorf("%w: invalid direction '%s'. closest: '%s'", ErrInvalidArgument, s, closest(alias, aliases))
}
