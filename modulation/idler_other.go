//go:build !linux

package modulation

import (
	"errors"

	"github.com/sarchlab/memblink/timing"
)

const absoluteSleepSupported = false

func sleepUntilAbsolute(timing.Instant) error {
	return errors.New("absolute sleep is not supported on this platform")
}
