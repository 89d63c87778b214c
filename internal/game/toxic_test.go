package game

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestToxicCloud_ClosesOverTime(t *testing.T) {
	c := NewToxicCloud(ToxicConfig{Delay: 1, Duration: 2, SafeRatio: 0.4}, 20, 10)

	c.Update(0.5)
	if c.Progress() != 0 || c.Left != 0 || c.Right != 20 || c.CornerRadius != 0 {
		t.Fatalf("cloud moved before delay: %+v", c)
	}
	if c.Inside(Vec2{0.1, 0.1}) {
		t.Fatal("nothing is toxic before closing starts")
	}

	c.Update(1.5) // elapsed 2.0
	if !near(c.Progress(), 0.5) {
		t.Fatalf("progress=%v", c.Progress())
	}
	// Safe radius is min(20,10)*0.4/2 = 2 around (10,5).
	if !near(c.Left, 4) || !near(c.Right, 16) || !near(c.Top, 1.5) || !near(c.Bottom, 8.5) {
		t.Fatalf("boundary l=%v r=%v t=%v b=%v", c.Left, c.Right, c.Top, c.Bottom)
	}
	if !near(c.CornerRadius, 1.75) {
		t.Fatalf("corner radius=%v", c.CornerRadius)
	}

	if c.Inside(Vec2{10, 5}) {
		t.Fatal("centre must stay safe")
	}
	if !c.Inside(Vec2{1, 5}) || !c.Damaging(Vec2{1, 5}) {
		t.Fatal("far outside must be toxic and damaging")
	}
	if !c.Inside(Vec2{3.9, 5}) || c.Damaging(Vec2{3.9, 5}) {
		t.Fatal("just past the edge is toxic but not yet damaging")
	}
	// Corner rounding: inside the box but outside the rounded corner.
	if !c.Inside(Vec2{4.1, 1.6}) {
		t.Fatal("rounded corner should be toxic")
	}

	c.Update(10)
	if c.Progress() != 1 {
		t.Fatalf("progress=%v", c.Progress())
	}
}

func TestToxicCloud_ZeroDurationClosesImmediately(t *testing.T) {
	c := NewToxicCloud(ToxicConfig{Delay: 0, Duration: 0, SafeRatio: 0.5}, 10, 10)
	c.Update(0)
	if c.Progress() != 1 {
		t.Fatalf("progress=%v", c.Progress())
	}
}

func TestToxicCloud_Prediction(t *testing.T) {
	c := NewToxicCloud(ToxicConfig{Delay: 0, Duration: 10, SafeRatio: 0.2}, 20, 20)
	p := Vec2{3, 10}
	if c.Inside(p) {
		t.Fatal("not inside yet")
	}
	if !c.WillBeInside(p, 1) {
		t.Fatal("expected point to be swallowed at the end")
	}
	if c.Progress() != 0 || c.Left != 0 {
		t.Fatal("prediction must not change the cloud")
	}

	var nilCloud *ToxicCloud
	if nilCloud.Inside(p) || nilCloud.Damaging(p) || nilCloud.WillBeInside(p, 1) || nilCloud.Progress() != 0 {
		t.Fatal("nil cloud is never toxic")
	}
	nilCloud.Update(1)
}
