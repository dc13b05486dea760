package service

import (
	"unicode"

	"github.com/noah-isme/roster-etl/internal/models"
)

const nightGradeIndex = 4

// Classify derives shift and grade level from a class name.
//
// The convention is positional:
//   - a leading digit marks a regular morning class whose grade is that leading number ("3A");
//   - otherwise a digit in the third position marks a night class whose grade is the raw
//     character in the fifth position ("EJ1-3");
//   - any other name with a letter prefix is a full-time class whose grade is the first
//     number after the prefix ("INT2A").
func Classify(name string) (models.Classification, error) {
	runes := []rune(name)
	switch detectPattern(runes) {
	case models.PatternRegular:
		n, ok := leadingNumber(runes)
		if !ok {
			return models.Classification{}, &ClassificationError{ClassName: name, Reason: "no grade number at start of name"}
		}
		return models.Classification{
			Pattern:    models.PatternRegular,
			Shift:      models.ShiftMorning,
			GradeLevel: models.NumericGrade(n),
		}, nil
	case models.PatternNight:
		if len(runes) <= nightGradeIndex {
			return models.Classification{}, &ClassificationError{
				ClassName: name,
				Reason:    "night class name too short to carry a grade",
				Err:       ErrNightGradeUndefined,
			}
		}
		return models.Classification{
			Pattern:    models.PatternNight,
			Shift:      models.ShiftNight,
			GradeLevel: models.RawGrade(string(runes[nightGradeIndex])),
		}, nil
	case models.PatternFullTime:
		n, ok := firstNumber(runes)
		if !ok {
			return models.Classification{}, &ClassificationError{ClassName: name, Reason: "full-time class name carries no grade number"}
		}
		return models.Classification{
			Pattern:    models.PatternFullTime,
			Shift:      models.ShiftFullTime,
			GradeLevel: models.NumericGrade(n),
		}, nil
	}

	reason := "name too short to classify"
	if len(runes) == 0 {
		reason = "empty class name"
	}
	return models.Classification{}, &ClassificationError{ClassName: name, Reason: reason}
}

// detectPattern returns zero when runes match no pattern.
func detectPattern(runes []rune) models.ClassPattern {
	if len(runes) == 0 {
		return 0
	}
	if isDigit(runes[0]) {
		return models.PatternRegular
	}
	if len(runes) < 3 {
		return 0
	}
	if isDigit(runes[2]) {
		return models.PatternNight
	}
	return models.PatternFullTime
}

func leadingNumber(runes []rune) (int, bool) {
	n, digits := 0, 0
	for _, r := range runes {
		if !isDigit(r) {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	return n, digits > 0
}

func firstNumber(runes []rune) (int, bool) {
	for i, r := range runes {
		if isDigit(r) {
			return leadingNumber(runes[i:])
		}
	}
	return 0, false
}

func isDigit(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsDigit(r)
}
