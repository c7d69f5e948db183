package somfy

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

var ErrUnknownZone = errors.New("unknown zone")

type Zone string

const (
	ZoneA   Zone = "A"
	ZoneB   Zone = "B"
	ZoneC   Zone = "C"
	ZoneABC Zone = "ABC"
)

var Zones = []Zone{ZoneA, ZoneB, ZoneC, ZoneABC}

func ParseZone(s string) (Zone, error) {
	if z := Zone(s); slices.Contains(Zones, z) {
		return z, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownZone, s)
}

// label returns the text of the control page button that turns the zone
// on or off, e.g. "Marche A B C".
func (z Zone) label(on bool) string {
	action := "Arrêt"
	if on {
		action = "Marche"
	}
	if z == ZoneABC {
		return action + " A B C"
	}
	return action + " " + string(z)
}

func (z Zone) button(on bool) string {
	if on {
		return "btn_zone_on_" + string(z)
	}
	return "btn_zone_off_" + string(z)
}
