package screenshot

import (
	"testing"
	"time"
)

func TestParsePosition(t *testing.T) {
	name := "2025-12-11[10-23]_-123.4, 2.5, 456.7_0.0, 0.9, 0.0, 0.3_12.5 (0).png"

	p, err := ParsePosition(name)
	if err != nil {
		t.Fatalf("ParsePosition failed: %v", err)
	}

	wantTaken := time.Date(2025, 12, 11, 10, 23, 0, 0, time.Local)
	if !p.Taken.Equal(wantTaken) {
		t.Errorf("Taken = %v, want %v", p.Taken, wantTaken)
	}
	if p.X != -123.4 || p.Y != 2.5 || p.Z != 456.7 {
		t.Errorf("position = (%v, %v, %v)", p.X, p.Y, p.Z)
	}
	if p.Rotation != (Quaternion{X: 0, Y: 0.9, Z: 0, W: 0.3}) {
		t.Errorf("rotation = %+v", p.Rotation)
	}
	if p.Azimuth != 12.5 {
		t.Errorf("azimuth = %v", p.Azimuth)
	}
}

func TestParsePositionIntegerCoordinates(t *testing.T) {
	name := "2025-01-05[09-03]_100, 0, -200_0, 1, 0, 0_270 (3).png"

	p, err := ParsePosition(name)
	if err != nil {
		t.Fatalf("ParsePosition failed: %v", err)
	}
	if p.X != 100 || p.Z != -200 || p.Azimuth != 270 {
		t.Errorf("got %+v", p)
	}
}

func TestParsePositionRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"plain screenshot", "2025-12-11[10-23] (0).png"},
		{"arbitrary file", "notes.txt"},
		{"missing quaternion part", "2025-12-11[10-23]_1, 2, 3_12.5 (0).png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePosition(tt.file); err == nil {
				t.Errorf("ParsePosition(%q) accepted a malformed name", tt.file)
			}
		})
	}
}
