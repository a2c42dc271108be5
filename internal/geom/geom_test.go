package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApproach(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c    Point
		wantSqDist float64
		wantRatio  float64
	}{
		{
			name: "perpendicular midpoint",
			a:    Point{0, 0}, b: Point{10, 0}, c: Point{5, 1},
			wantSqDist: 1, wantRatio: 0.5,
		},
		{
			name: "item on segment",
			a:    Point{0, 0}, b: Point{4, 0}, c: Point{1, 0},
			wantSqDist: 0, wantRatio: 0.25,
		},
		{
			name: "item before start clamps to 0",
			a:    Point{0, 0}, b: Point{10, 0}, c: Point{-3, 4},
			wantSqDist: 25, wantRatio: 0,
		},
		{
			name: "item past end clamps to 1",
			a:    Point{0, 0}, b: Point{10, 0}, c: Point{13, 4},
			wantSqDist: 25, wantRatio: 1,
		},
		{
			name: "zero length segment",
			a:    Point{2, 2}, b: Point{2, 2}, c: Point{5, 6},
			wantSqDist: 25, wantRatio: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Approach(tt.a, tt.b, tt.c)
			if !almostEqual(got.SqDistance, tt.wantSqDist) {
				t.Errorf("SqDistance = %v, want %v", got.SqDistance, tt.wantSqDist)
			}
			if !almostEqual(got.Ratio, tt.wantRatio) {
				t.Errorf("Ratio = %v, want %v", got.Ratio, tt.wantRatio)
			}
		})
	}
}

func TestReached(t *testing.T) {
	tests := []struct {
		name   string
		r      ClosestApproach
		radius float64
		want   bool
	}{
		{"inside radius", ClosestApproach{SqDistance: 0.04, Ratio: 0.5}, 0.3, true},
		{"exactly at radius", ClosestApproach{SqDistance: 0.09, Ratio: 0.5}, 0.3, true},
		{"outside radius", ClosestApproach{SqDistance: 0.1, Ratio: 0.5}, 0.3, false},
		{"zero radius touch", ClosestApproach{SqDistance: 0, Ratio: 1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Reached(tt.radius); got != tt.want {
				t.Errorf("Reached(%v) = %v, want %v", tt.radius, got, tt.want)
			}
		})
	}
}

func TestVecOps(t *testing.T) {
	v := Point{3, 4}.Sub(Point{1, 1})
	if v != (Vec{2, 3}) {
		t.Fatalf("Sub = %v", v)
	}
	if got := v.Scale(2); got != (Vec{4, 6}) {
		t.Fatalf("Scale = %v", got)
	}
	if got := v.Dot(Vec{1, 2}); got != 8 {
		t.Fatalf("Dot = %v", got)
	}
	if !(Vec{}).IsZero() || (Vec{0, 1}).IsZero() {
		t.Fatal("IsZero misclassifies")
	}
}
