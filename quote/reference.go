package quote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ReferencePrefix starts every quotation reference number.
const ReferencePrefix = "NQ"

var ErrInvalidReference = errors.New("invalid reference number")

// ReferenceYearPrefix returns "NQ-<year>-", the prefix shared by all
// references of a calendar year.
func ReferenceYearPrefix(year int) string {
	return fmt.Sprintf("%s-%d-", ReferencePrefix, year)
}

// FormatReference builds "NQ-<year>-<seq>" with a 4-digit zero-padded
// sequence. Sequences past 9999 keep all their digits.
func FormatReference(year, seq int) string {
	return fmt.Sprintf("%s%04d", ReferenceYearPrefix(year), seq)
}

// ParseReference splits a reference number into its year and sequence.
func ParseReference(ref string) (year, seq int, err error) {
	parts := strings.Split(ref, "-")
	if len(parts) != 3 || parts[0] != ReferencePrefix {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 4 {
		return 0, 0, fmt.Errorf("%w: bad year in %q", ErrInvalidReference, ref)
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return 0, 0, fmt.Errorf("%w: bad sequence in %q", ErrInvalidReference, ref)
	}
	return year, seq, nil
}

// NextReference returns the reference following last within year. An empty
// or unparsable last, or one from another year, starts the year at 0001.
func NextReference(last string, year int) string {
	y, seq, err := ParseReference(last)
	if err != nil || y != year {
		return FormatReference(year, 1)
	}
	return FormatReference(year, seq+1)
}
