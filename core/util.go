package core

import (
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStrings cleans every string in ss, dropping the blank ones and duplicates.
func CleanStrings(ss []string, lower ...bool) []string {
	if ss == nil {
		return nil
	}
	seen := make(map[string]bool, len(ss))
	clean := make([]string, 0, len(ss))
	for _, s := range ss {
		s = CleanString(s, lower...)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		clean = append(clean, s)
	}
	return clean
}

func StringInSlice(s string, slice []string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

// NowFunc is the clock used by services. mockable
var NowFunc = func() time.Time { return time.Now().UTC() }

func BoolPtr(b bool) *bool { return &b }
