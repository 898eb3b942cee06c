package geom

import "testing"

func TestRotateQuarterTurns(t *testing.T) {
	tests := []struct {
		angle Angle
		in    Point
		want  Point
	}{
		{0, Point{10, 0}, Point{10, 0}},
		{90, Point{10, 0}, Point{0, -10}},
		{180, Point{10, 0}, Point{-10, 0}},
		{270, Point{10, 0}, Point{0, 10}},
		{-90, Point{10, 0}, Point{0, 10}},
		{90, Point{0, 10}, Point{10, 0}},
		{450, Point{3, 4}, Point{4, -3}},
	}

	for _, tt := range tests {
		if got := Rotate(tt.in, tt.angle); got != tt.want {
			t.Errorf("Rotate(%v, %v) = %v, want %v", tt.in, tt.angle, got, tt.want)
		}
	}
}

func TestRotateAboutKeepsCenter(t *testing.T) {
	c := PointMM(100, 50)
	if got := RotateAbout(c, c, 33.3); got != c {
		t.Errorf("center moved to %v", got)
	}
	p := PointMM(101, 50)
	if got, want := RotateAbout(p, c, 90), PointMM(100, 49); got != want {
		t.Errorf("RotateAbout = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want Angle
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{725, 5},
		{359.9999999999, 0},
		{-0.5, 359.5},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMillimetres(t *testing.T) {
	if got := FromMM(12.7); got != 12_700_000 {
		t.Errorf("FromMM(12.7) = %d", got)
	}
	if got := FormatMM(-1_250_000); got != "-1.25" {
		t.Errorf("FormatMM = %q", got)
	}
	if got := FormatMM(0); got != "0" {
		t.Errorf("FormatMM(0) = %q", got)
	}
	if got := Angle(89.99999999).Format(); got != "90" {
		t.Errorf("Format = %q", got)
	}
}

func TestBoundingBox(t *testing.T) {
	var bb BoundingBox
	if !bb.IsEmpty() || bb.Area() != 0 {
		t.Fatalf("zero box should be empty")
	}
	bb.Expand(Point{-5, 2})
	bb.Expand(Point{5, 12})
	if bb.Width() != 10 || bb.Height() != 10 || bb.Area() != 100 {
		t.Errorf("unexpected box %+v", bb)
	}
}
