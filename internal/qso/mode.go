package qso

import "strings"

// Mode is a transmission-method classifier.
type Mode string

const (
	ModeUnknown Mode = ""
	ModeVoice   Mode = "voice"
	ModeCW      Mode = "cw"
	ModeDigital Mode = "digital"
)

var modeAliases = map[string]Mode{
	"PH":    ModeVoice,
	"SSB":   ModeVoice,
	"USB":   ModeVoice,
	"LSB":   ModeVoice,
	"FM":    ModeVoice,
	"AM":    ModeVoice,
	"VOICE": ModeVoice,
	"CW":    ModeCW,
	"RY":    ModeDigital,
	"RTTY":  ModeDigital,
	"DG":    ModeDigital,
	"DIG":   ModeDigital,
	"FT8":   ModeDigital,
	"FT4":   ModeDigital,
	"PSK":   ModeDigital,
	"PSK31": ModeDigital,
}

// ParseMode maps Cabrillo and operator mode tokens to a Mode.
func ParseMode(token string) (Mode, bool) {
	mode, ok := modeAliases[strings.ToUpper(strings.TrimSpace(token))]
	return mode, ok
}
