// Package money holds the contest fee schedule and prize-pool arithmetic.
// Everything here is pure: callers pass the clock in, nothing touches storage.
package money

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arbrepalabres/backend/pkg/enums"
	apperrors "github.com/arbrepalabres/backend/pkg/errors"
)

// Registration fees per category, in CFA francs.
const (
	FeePrimaire      int64 = 500
	FeeCollegeLycee  int64 = 1000
	FeeUniversitaire int64 = 2000
)

// Age brackets, inclusive on both ends.
const (
	MinAge             = 10
	MaxAgePrimaire     = 12
	MaxAgeCollegeLycee = 18
	MaxAge             = 40
	DebateParticipants = 4
	winnerShareRate    = "0.75"
)

// Placement is the outcome of applying the fee schedule to a date of birth.
type Placement struct {
	Category enums.Category
	Fee      int64
	Age      int
}

// Split is the division of a debate pool between the winner and the organizer.
type Split struct {
	OrganizerFee int64
	WinnerAmount int64
}

// PlacementForBirthDate computes the candidate's whole-year age as of at and
// maps it onto a category and registration fee. A birthday that has not yet
// occurred this year does not count.
func PlacementForBirthDate(birthDate, at time.Time) (Placement, error) {
	age := at.Year() - birthDate.Year()
	anniversary := time.Date(at.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, at.Location())
	if at.Before(anniversary) {
		age--
	}

	switch {
	case age < MinAge || age > MaxAge:
		return Placement{}, apperrors.Newf(apperrors.CodeOutOfRangeAge,
			"age %d is outside the admissible range of %d to %d years", age, MinAge, MaxAge)
	case age <= MaxAgePrimaire:
		return Placement{Category: enums.CategoryPrimaire, Fee: FeePrimaire, Age: age}, nil
	case age <= MaxAgeCollegeLycee:
		return Placement{Category: enums.CategoryCollegeLycee, Fee: FeeCollegeLycee, Age: age}, nil
	default:
		return Placement{Category: enums.CategoryUniversitaire, Fee: FeeUniversitaire, Age: age}, nil
	}
}

// FeeForCategory returns the registration fee charged for a category.
func FeeForCategory(category enums.Category) (int64, error) {
	switch category {
	case enums.CategoryPrimaire:
		return FeePrimaire, nil
	case enums.CategoryCollegeLycee:
		return FeeCollegeLycee, nil
	case enums.CategoryUniversitaire:
		return FeeUniversitaire, nil
	default:
		return 0, apperrors.Newf(apperrors.CodeValidation, "unknown category %q", category)
	}
}

// SplitPool divides a total pool into the winner's share and the organizer
// fee. The winner share is 75% rounded half-up; the organizer fee is the
// remainder so the two always sum back to the total.
func SplitPool(totalPool int64) Split {
	winner := decimal.NewFromInt(totalPool).
		Mul(decimal.RequireFromString(winnerShareRate)).
		Round(0).
		IntPart()
	return Split{
		OrganizerFee: totalPool - winner,
		WinnerAmount: winner,
	}
}

// PoolForDebate computes the pool collected from one fee per participant and
// splits it.
func PoolForDebate(feePerHead int64, participantCount int) (int64, Split) {
	total := feePerHead * int64(participantCount)
	return total, SplitPool(total)
}
