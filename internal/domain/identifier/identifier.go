// Package identifier validates ISIN security identifiers and locates them
// inside unstructured text. Validation is a pure function: malformed input
// returns false, it never errors or panics.
package identifier

import (
	"regexp"
	"strings"
)

// Length is the fixed size of an ISIN: 2-letter prefix, 9 alphanumerics,
// 1 check digit.
const Length = 12

// Pattern matches an ISIN-shaped token. A match is only a candidate; it
// still has to pass Validate.
var Pattern = regexp.MustCompile(`\b([A-Z]{2}[A-Z0-9]{9}[0-9])\b`)

// Validate reports whether code is a checksum-valid ISIN with a recognized
// country prefix. Lowercase input is accepted.
func Validate(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != Length {
		return false
	}
	if !isLetter(code[0]) || !isLetter(code[1]) {
		return false
	}
	if !IsCountryPrefix(code[:2]) {
		return false
	}
	last := code[Length-1]
	if last < '0' || last > '9' {
		return false
	}
	for i := 2; i < Length-1; i++ {
		c := code[i]
		if !isLetter(c) && !isDigit(c) {
			return false
		}
	}
	return CheckDigit(code[:Length-1]) == int(last-'0')
}

// CheckDigit computes the expected final digit for the 11-character payload.
// Each character expands to its numeric value (A=10 .. Z=35, digits pass
// through), the expansion is concatenated, and a Luhn mod-10 checksum runs
// right-to-left over the digit stream. Returns -1 for characters outside
// [0-9A-Z].
func CheckDigit(payload string) int {
	digits := make([]int, 0, len(payload)*2)
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		switch {
		case isDigit(c):
			digits = append(digits, int(c-'0'))
		case isLetter(c):
			v := int(c-'A') + 10
			digits = append(digits, v/10, v%10)
		default:
			return -1
		}
	}

	// Walking right to left, double every second digit starting with the
	// rightmost; doubled values above 9 sum their own digits.
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// FindAll returns every checksum-valid identifier in text, uppercased, in
// order of appearance. Duplicates are preserved; callers dedupe if needed.
func FindAll(text string) []string {
	matches := Pattern.FindAllString(strings.ToUpper(text), -1)
	if len(matches) == 0 {
		return nil
	}
	valid := make([]string, 0, len(matches))
	for _, m := range matches {
		if Validate(m) {
			valid = append(valid, m)
		}
	}
	return valid
}

func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
