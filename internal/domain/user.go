package domain

import "strings"

// User is an account on the FilmWise API, identified by name
type User struct {
	Name string
}

// SanitizeName removes all spaces from a raw name. The API addresses
// users and their rating history by this sanitized form.
func SanitizeName(raw string) string {
	return strings.ReplaceAll(raw, " ", "")
}

// SameName compares user names case-insensitively
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}
