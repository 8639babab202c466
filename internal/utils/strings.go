package utils

import (
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StationCode extracts "NDLS" from "New Delhi (NDLS)". It returns "" when the
// name carries no code.
func StationCode(station string) string {
	open := strings.LastIndexByte(station, '(')
	close := strings.LastIndexByte(station, ')')
	if open < 0 || close <= open+1 {
		return ""
	}
	return strings.TrimSpace(station[open+1 : close])
}

// MatchStation reports whether query names station, either by its full name
// or by its code, ignoring case and extra whitespace.
func MatchStation(station, query string) bool {
	q := NormalizeSpace(query)
	if q == "" {
		return false
	}
	if strings.EqualFold(NormalizeSpace(station), q) {
		return true
	}
	code := StationCode(station)
	return code != "" && strings.EqualFold(code, q)
}

// SafeFilenamePart strips characters that break Content-Disposition filenames.
func SafeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
