// Package screenshot reads the player position the game embeds in
// screenshot filenames.
//
// A filename looks like
//
//	2025-12-11[10-23]_-123.4, 2.5, 456.7_0.0, 0.9, 0.0, 0.3_12.5 (0).png
//
// with the world position as "x, y, z", the view rotation as a
// quaternion "qx, qy, qz, qw", and a trailing azimuth.
package screenshot

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Position is a player position decoded from one screenshot name.
type Position struct {
	Taken    time.Time
	X, Y, Z  float64
	Rotation Quaternion
	Azimuth  float64
}

// Quaternion is the view rotation as stored by the game.
type Quaternion struct {
	X, Y, Z, W float64
}

const num = `(-?\d+(?:\.\d+)?)`

var nameRe = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2})\[(\d{2})-(\d{2})\]` +
		`_` + num + `, ` + num + `, ` + num +
		`_` + num + `, ` + num + `, ` + num + `, ` + num +
		`_` + num)

// ParsePosition decodes a screenshot filename. Names that do not carry
// position data return an error.
func ParsePosition(name string) (Position, error) {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return Position{}, fmt.Errorf("screenshot: no position in %q", name)
	}

	taken, err := time.ParseInLocation("2006-01-02 15-04", m[1]+" "+m[2]+"-"+m[3], time.Local)
	if err != nil {
		return Position{}, fmt.Errorf("screenshot: %q: %w", name, err)
	}

	var f [8]float64
	for i := range f {
		f[i], err = strconv.ParseFloat(m[i+4], 64)
		if err != nil {
			return Position{}, fmt.Errorf("screenshot: %q: %w", name, err)
		}
	}

	return Position{
		Taken:    taken,
		X:        f[0],
		Y:        f[1],
		Z:        f[2],
		Rotation: Quaternion{X: f[3], Y: f[4], Z: f[5], W: f[6]},
		Azimuth:  f[7],
	}, nil
}
