package domain

import "strings"

// Protocol names a fasting schedule as fasting:eating hours.
type Protocol string

const (
	Protocol16x8 Protocol = "16:8"
	Protocol18x6 Protocol = "18:6"
	Protocol20x4 Protocol = "20:4"

	DefaultProtocol    = Protocol16x8
	DefaultTargetHours = 16.0
)

var targetHours = map[Protocol]float64{
	Protocol16x8: 16,
	Protocol18x6: 18,
	Protocol20x4: 20,
}

// Protocols lists the known schedules in display order.
func Protocols() []Protocol {
	return []Protocol{Protocol16x8, Protocol18x6, Protocol20x4}
}

func ParseProtocol(s string) Protocol {
	return Protocol(strings.TrimSpace(s))
}

func (p Protocol) Known() bool {
	_, ok := targetHours[p]
	return ok
}

// TargetHours falls back to 16 for anything unrecognized.
func (p Protocol) TargetHours() float64 {
	if h, ok := targetHours[p]; ok {
		return h
	}
	return DefaultTargetHours
}

func (p Protocol) String() string {
	return string(p)
}
