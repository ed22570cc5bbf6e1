package assistant

import "testing"

func TestTracker(t *testing.T) {
	var tr Tracker
	if tr.State() != StateIdle || tr.Busy() {
		t.Fatalf("expected idle tracker")
	}
	tr.Begin()
	if tr.State() != StateSending || !tr.Busy() {
		t.Fatalf("expected sending; got %s", tr.State())
	}
	tr.Finish(true)
	if tr.State() != StateFailed || tr.Busy() {
		t.Fatalf("expected failed; got %s", tr.State())
	}
	tr.Begin()
	tr.Begin()
	tr.Finish(false)
	if tr.State() != StateSending {
		t.Fatalf("expected sending while one request is outstanding; got %s", tr.State())
	}
	tr.Finish(false)
	if tr.State() != StateSucceeded {
		t.Fatalf("expected ok; got %s", tr.State())
	}
}
