package models

import "strings"

// CardAppPairing binds one RFID card to one guarded application name.
// At most one pairing exists per app name; a card may guard several apps.
type CardAppPairing struct {
	CardID  string `json:"card_id"`  // opaque token from the sensor
	AppName string `json:"app_name"` // normalized, no extension
}

// NormalizeAppName lowercases and trims an application name and strips
// a trailing executable suffix if the user typed one anyway.
func NormalizeAppName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ".exe")
	return name
}
