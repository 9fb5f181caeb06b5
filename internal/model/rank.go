// Package model defines the typed records flowing through the segmentation
// pipeline. Raw tables are parsed into these entities once; every derived
// entity is an immutable snapshot computed from them. Field access replaces
// column-name lookup so type mismatches surface at compile time instead of
// silently coercing downstream.
package model

import (
	"github.com/praxa/docsegment/internal/errors"
)

// Rank is the ordered loyalty tier of a doctor. The nine levels form a
// strict scale from Silver (lowest) to Ambassador (highest); comparisons
// between ranks use Level.
type Rank int

const (
	RankSilver Rank = iota + 1
	RankSilverPlus
	RankGold
	RankGoldPlus
	RankPlatinum
	RankPlatinumPlus
	RankTitanium
	RankTitaniumPlus
	RankAmbassador
)

// NumRanks is the size of the rank scale.
const NumRanks = 9

var rankNames = [NumRanks]string{
	"Silver", "Silver Plus", "Gold", "Gold Plus", "Platinum",
	"Platinum Plus", "Titanium", "Titanium Plus", "Ambassador",
}

// String returns the canonical token for the rank.
func (r Rank) String() string {
	if r < RankSilver || r > RankAmbassador {
		return "Unknown"
	}
	return rankNames[r-1]
}

// Level returns the ordinal position of the rank on the 1..9 scale.
func (r Rank) Level() int {
	return int(r)
}

// Valid reports whether the rank is one of the nine enumerated levels.
func (r Rank) Valid() bool {
	return r >= RankSilver && r <= RankAmbassador
}

// Ranks returns all nine levels in ascending order.
func Ranks() [NumRanks]Rank {
	var out [NumRanks]Rank
	for i := range out {
		out[i] = Rank(i + 1)
	}
	return out
}

// ParseRank maps a raw token onto the rank scale. Any token outside the
// nine enumerated levels is a data-quality error, never a silent coercion.
func ParseRank(token string) (Rank, error) {
	for i, name := range rankNames {
		if token == name {
			return Rank(i + 1), nil
		}
	}
	return 0, errors.NewDataQualityError("ParseRank", "doctors", "rank",
		"unrecognized rank token: "+token)
}
