package notify

import "testing"

// TestHistorySince verifies incremental reads by sequence.
func TestHistorySince(t *testing.T) {
	h := NewHistory(3)
	h.Publish(Notification{Title: "1"})
	h.Publish(Notification{Title: "2"})
	h.Publish(Notification{Title: "3"})

	items := h.Since(1)
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Seq != 2 || items[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", items)
	}
}

// TestHistoryCapsEntries verifies buffer limit trimming behavior.
func TestHistoryCapsEntries(t *testing.T) {
	h := NewHistory(2)
	h.Publish(Notification{Title: "1"})
	h.Publish(Notification{Title: "2"})
	h.Publish(Notification{Title: "3"})

	items := h.Since(0)
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Title != "2" || items[1].Title != "3" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].Timestamp.IsZero() {
		t.Fatal("expected timestamp to be assigned")
	}
}

// TestHistoryEmpty verifies reads from an empty buffer.
func TestHistoryEmpty(t *testing.T) {
	if items := NewHistory(0).Since(0); items != nil {
		t.Fatalf("items = %+v, want nil", items)
	}
}

// TestHistoryAtLeastFiltersBySeverity verifies level filtering.
func TestHistoryAtLeastFiltersBySeverity(t *testing.T) {
	h := NewHistory(10)
	h.Publish(Notification{Title: "saved", Level: LevelSuccess})
	h.Publish(Notification{Title: "disk low", Level: LevelWarning})
	h.Publish(Notification{Title: "sync failed", Level: LevelError})
	h.Publish(Notification{Title: "hello", Level: LevelInfo})

	alerts := h.AtLeast(LevelWarning, 0)
	if len(alerts) != 2 || alerts[0].Title != "disk low" || alerts[1].Title != "sync failed" {
		t.Fatalf("warning+ = %+v", alerts)
	}
	if errs := h.AtLeast(LevelError, 3); errs != nil {
		t.Fatalf("errors after seq 3 = %+v, want none", errs)
	}
}

// TestHistoryLatestNewestFirst verifies bounded newest-first reads.
func TestHistoryLatestNewestFirst(t *testing.T) {
	h := NewHistory(3)
	for _, title := range []string{"a", "b", "c", "d"} {
		h.Publish(Notification{Title: title})
	}

	got := h.Latest(2)
	if len(got) != 2 || got[0].Title != "d" || got[1].Title != "c" {
		t.Fatalf("latest(2) = %+v", got)
	}
	if all := h.Latest(10); len(all) != 3 || all[2].Title != "b" {
		t.Fatalf("latest(10) = %+v", all)
	}
	if none := h.Latest(0); none != nil {
		t.Fatalf("latest(0) = %+v, want nil", none)
	}
}

// TestHistoryNormalizesUnknownLevel verifies unknown levels become info.
func TestHistoryNormalizesUnknownLevel(t *testing.T) {
	h := NewHistory(5)
	n := h.Publish(Notification{Title: "x", Level: "urgent"})
	if n.Level != LevelInfo {
		t.Fatalf("level = %q, want info", n.Level)
	}
	h.Publish(Notification{Title: "y", Level: LevelError})

	counts := h.Counts()
	if counts[LevelInfo] != 1 || counts[LevelError] != 1 {
		t.Fatalf("counts = %+v", counts)
	}
}
