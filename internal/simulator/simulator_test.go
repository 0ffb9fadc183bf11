package simulator

import (
	"context"
	"math"
	"testing"
	"time"
)

func newTestSim(seed int64) *Simulator {
	return New("sensor-001", "Main Sensor Unit", time.Second, seed).(*Simulator)
}

func TestNextStaysInRange(t *testing.T) {
	s := newTestSim(1)
	for i := 0; i < 2000; i++ {
		r := s.next()
		if r.Temperature < 15.0 || r.Temperature > 35.0 {
			t.Fatalf("step %d: temperature %v out of range", i, r.Temperature)
		}
		if r.Humidity < 30.0 || r.Humidity > 70.0 {
			t.Fatalf("step %d: humidity %v out of range", i, r.Humidity)
		}
		if r.Motion != 0 && r.Motion != 1 {
			t.Fatalf("step %d: motion %d not binary", i, r.Motion)
		}
		if math.Abs(r.Temperature*100-math.Round(r.Temperature*100)) > 1e-9 {
			t.Fatalf("step %d: temperature %v not rounded", i, r.Temperature)
		}
	}
}

func TestNextChangesAreGradual(t *testing.T) {
	s := newTestSim(2)
	prev := s.next()
	for i := 0; i < 500; i++ {
		cur := s.next()
		// Baseline drift plus noise can move at most ~0.62 between samples.
		if math.Abs(cur.Temperature-prev.Temperature) > 0.7 {
			t.Fatalf("step %d: temperature jumped %v -> %v", i, prev.Temperature, cur.Temperature)
		}
		if math.Abs(cur.Humidity-prev.Humidity) > 0.81 {
			t.Fatalf("step %d: humidity jumped %v -> %v", i, prev.Humidity, cur.Humidity)
		}
		prev = cur
	}
}

func TestMotionPersistsAfterTrigger(t *testing.T) {
	s := newTestSim(3)
	streak := 0
	sawMotion := false
	for i := 0; i < 5000; i++ {
		r := s.next()
		if r.Motion == 1 {
			sawMotion = true
			streak++
			continue
		}
		// A burst covers the trigger sample plus at least a 2 sample hold.
		// Bursts can chain when a fresh trigger lands at the end of one, so
		// only the minimum is bounded.
		if streak > 0 && streak < 3 {
			t.Fatalf("motion burst of only %d samples", streak)
		}
		streak = 0
	}
	if !sawMotion {
		t.Fatalf("no motion in 5000 samples despite 8%% trigger chance")
	}
}

func TestSameSeedSameSeries(t *testing.T) {
	a, b := newTestSim(42), newTestSim(42)
	for i := 0; i < 100; i++ {
		ra, rb := a.next(), b.next()
		if ra.Temperature != rb.Temperature || ra.Humidity != rb.Humidity || ra.Motion != rb.Motion {
			t.Fatalf("step %d diverged: %+v vs %+v", i, ra, rb)
		}
	}
}

func TestReadRequiresConnect(t *testing.T) {
	s := newTestSim(4)
	_, errs := s.Read(context.Background())
	select {
	case err := <-errs:
		if err == nil {
			t.Fatalf("expected error from unconnected stream")
		}
	case <-time.After(time.Second):
		t.Fatalf("no error from unconnected stream")
	}
}

func TestReadEmitsOnInterval(t *testing.T) {
	s := New("sensor-001", "Main Sensor Unit", 10*time.Millisecond, 5)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !s.IsConnected() {
		t.Fatalf("expected connected after Connect")
	}

	readings, _ := s.Read(ctx)
	for i := 0; i < 3; i++ {
		select {
		case r := <-readings:
			if r.DeviceID != "sensor-001" || r.DeviceName != "Main Sensor Unit" {
				t.Fatalf("unexpected identity: %+v", r)
			}
			if r.Timestamp.IsZero() || r.Timestamp.Location() != time.UTC {
				t.Fatalf("timestamp not UTC: %v", r.Timestamp)
			}
		case <-time.After(time.Second):
			t.Fatalf("reading %d never arrived", i)
		}
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if s.IsConnected() {
		t.Fatalf("expected disconnected after Close")
	}
}
