package health

import "testing"

func TestRegistryTracksPerDevice(t *testing.T) {
	r := NewRegistry(nil)
	r.Record("esp32-02", "Hallway", true)
	r.Record("esp32-01", "Living Room", true)
	r.Record("esp32-01", "Living Room", false)

	snaps := r.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snaps))
	}
	if snaps[0].DeviceID != "esp32-01" || snaps[1].DeviceID != "esp32-02" {
		t.Fatalf("snapshots not sorted by device id: %s, %s", snaps[0].DeviceID, snaps[1].DeviceID)
	}
	if snaps[0].TotalReadings != 2 || snaps[0].FailedReadings != 1 {
		t.Fatalf("esp32-01 counts = %d total / %d failed, want 2 / 1", snaps[0].TotalReadings, snaps[0].FailedReadings)
	}
	if snaps[1].TotalReadings != 1 || snaps[1].SuccessfulReadings != 1 {
		t.Fatalf("esp32-02 counts = %d total / %d ok, want 1 / 1", snaps[1].TotalReadings, snaps[1].SuccessfulReadings)
	}
}

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry(nil)
	if got := r.Snapshots(); len(got) != 0 {
		t.Fatalf("expected no snapshots, got %d", len(got))
	}
}
