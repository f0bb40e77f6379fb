package engine

import "testing"

func TestBarrierTrackerReentersOnChange(t *testing.T) {
	c := &Counters{OutPending: 1}
	tr := NewBarrierTracker(c)

	if tr.ShouldEnter(0, 0) {
		t.Fatal("ShouldEnter returned true while not quiescent")
	}

	c.OutPending = 0
	if !tr.ShouldEnter(1, 0) {
		t.Fatal("expected first quiescent vote to announce")
	}
	if tr.ShouldEnter(1, 0) {
		t.Fatal("expected unchanged vote not to re-announce")
	}
	if !tr.ShouldEnter(1, 1) {
		t.Fatal("expected a changed received total to re-announce")
	}
}

func TestBarrierTrackerResetsOnUnquiesce(t *testing.T) {
	c := &Counters{}
	tr := NewBarrierTracker(c)
	if !tr.ShouldEnter(0, 0) {
		t.Fatal("expected initial quiescent vote to announce")
	}

	c.OutPending = 1
	if tr.ShouldEnter(0, 0) {
		t.Fatal("ShouldEnter returned true while un-quiesced")
	}

	c.OutPending = 0
	if !tr.ShouldEnter(0, 0) {
		t.Fatal("expected re-quiesced vote to announce again even though sent/received unchanged")
	}
}

func TestBarrierCoordinatorDoneRequiresAllVotesAndBalance(t *testing.T) {
	coord := NewBarrierCoordinator(3)

	if coord.Done() {
		t.Fatal("Done before any vote")
	}
	coord.Record(0, 2, 0)
	coord.Record(1, 0, 1)
	if coord.Done() {
		t.Fatal("Done before every rank has voted")
	}

	done := coord.Record(2, 0, 1)
	if !done {
		t.Fatal("expected Done once sent totals equal received totals across all ranks")
	}
	if !coord.Done() {
		t.Fatal("Done() should remain true once satisfied")
	}
}

func TestBarrierCoordinatorNotDoneWhenUnbalanced(t *testing.T) {
	coord := NewBarrierCoordinator(2)
	coord.Record(0, 5, 0)
	if coord.Record(1, 0, 3) {
		t.Fatal("expected Done to be false: sent (5) != received (3)")
	}
}
