// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	return &Time{
		fps:       cfg.FramesPerSecond,
		fpsTicker: time.NewTicker(FrameInterval(cfg.FramesPerSecond)),
	}
}

// FrameInterval is the delay between two frames at the given rate.
// Zero or negative rates mean unlimited.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		return time.Nanosecond
	}
	return time.Second / time.Duration(fps)
}

// Time contains all the time services and tickers
type Time struct {
	fps       int
	fpsTicker *time.Ticker
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// Stop releases the tickers
func (t *Time) Stop() {
	t.fpsTicker.Stop()
}
