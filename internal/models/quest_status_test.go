package models

import (
	"testing"
	"time"
)

func TestQuestTransitionsCoverEveryPair(t *testing.T) {
	for _, status := range QuestStatuses {
		ops, ok := questTransitions[status]
		if !ok {
			t.Fatalf("status %s has no transitions", status)
		}
		for _, op := range QuestOps {
			if _, ok := ops[op]; !ok {
				t.Errorf("status %s is missing op %s", status, op)
			}
		}
	}
}

func TestQuestStatusNext(t *testing.T) {
	type want struct {
		next   QuestStatus
		reject Rejection
	}
	moved := func(next QuestStatus) want { return want{next: next} }
	conflict := want{reject: RejectConflict}
	invalid := want{reject: RejectInvalidState}

	table := map[QuestStatus]map[QuestOp]want{
		QuestStatusActive: {
			QuestOpAccept:         moved(QuestStatusInProgress),
			QuestOpSubmit:         invalid,
			QuestOpRequestChanges: invalid,
			QuestOpComplete:       invalid,
			QuestOpUnlock:         invalid,
		},
		QuestStatusBlocked: {
			QuestOpAccept:         invalid,
			QuestOpSubmit:         invalid,
			QuestOpRequestChanges: invalid,
			QuestOpComplete:       invalid,
			QuestOpUnlock:         moved(QuestStatusActive),
		},
		QuestStatusInProgress: {
			QuestOpAccept:         conflict,
			QuestOpSubmit:         moved(QuestStatusReviewPending),
			QuestOpRequestChanges: invalid,
			QuestOpComplete:       invalid,
			QuestOpUnlock:         invalid,
		},
		QuestStatusReviewPending: {
			QuestOpAccept:         conflict,
			QuestOpSubmit:         conflict,
			QuestOpRequestChanges: moved(QuestStatusChangesRequested),
			QuestOpComplete:       moved(QuestStatusTaskCompleted),
			QuestOpUnlock:         invalid,
		},
		QuestStatusChangesRequested: {
			QuestOpAccept:         conflict,
			QuestOpSubmit:         moved(QuestStatusReviewPending),
			QuestOpRequestChanges: invalid,
			QuestOpComplete:       invalid,
			QuestOpUnlock:         invalid,
		},
		QuestStatusTaskCompleted: {
			QuestOpAccept:         conflict,
			QuestOpSubmit:         conflict,
			QuestOpRequestChanges: invalid,
			QuestOpComplete:       invalid,
			QuestOpUnlock:         invalid,
		},
	}

	for status, ops := range table {
		for op, w := range ops {
			next, reject := status.Next(op)
			if reject != w.reject {
				t.Errorf("%s --%s--> rejection %d, want %d", status, op, reject, w.reject)
				continue
			}
			if w.reject != RejectNone {
				if next != status {
					t.Errorf("%s --%s--> rejected but moved to %s", status, op, next)
				}
				continue
			}
			if next != w.next {
				t.Errorf("%s --%s--> %s, want %s", status, op, next, w.next)
			}
		}
	}
}

func TestQuestStatusNextUnknown(t *testing.T) {
	if _, reject := QuestStatus("bogus").Next(QuestOpAccept); reject != RejectInvalidState {
		t.Fatalf("unknown status: rejection %d", reject)
	}
	if _, reject := QuestStatusActive.Next(QuestOp("dance")); reject != RejectInvalidState {
		t.Fatalf("unknown op: rejection %d", reject)
	}
}

func TestQuestStatusHelpers(t *testing.T) {
	if !QuestStatusTaskCompleted.Terminal() {
		t.Fatal("TASK_COMPLETED should be terminal")
	}
	for _, status := range QuestStatuses {
		if !status.Valid() {
			t.Errorf("%s should be valid", status)
		}
		if status != QuestStatusTaskCompleted && status.Terminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
	if QuestStatus("done").Valid() {
		t.Fatal("unknown status reported valid")
	}

	for _, op := range QuestOps {
		parsed, err := ParseQuestOp(string(op))
		if err != nil || parsed != op {
			t.Errorf("ParseQuestOp(%q) = %q, %v", op, parsed, err)
		}
	}
	if _, err := ParseQuestOp("ACCEPT"); err == nil {
		t.Fatal("ops are case sensitive")
	}
}

func TestQuestProgressAdvance(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	progress := &QuestProgress{Status: QuestStatusBlocked, IsLocked: true}

	progress.Advance(QuestStatusActive, start)
	if progress.IsLocked || progress.Status != QuestStatusActive {
		t.Fatalf("unlock left %+v", progress)
	}

	progress.Advance(QuestStatusInProgress, start)
	if progress.StartedAt == nil || !progress.StartedAt.Equal(start) {
		t.Fatalf("started_at = %v", progress.StartedAt)
	}

	later := start.Add(time.Hour)
	progress.Advance(QuestStatusReviewPending, later)
	progress.Advance(QuestStatusChangesRequested, later)
	progress.Advance(QuestStatusInProgress, later)
	if !progress.StartedAt.Equal(start) {
		t.Fatalf("started_at moved to %v", progress.StartedAt)
	}
	if progress.CompletedAt != nil || progress.Progress != 0 {
		t.Fatalf("completion stamped early: %+v", progress)
	}

	done := later.Add(time.Hour)
	progress.Advance(QuestStatusTaskCompleted, done)
	if progress.CompletedAt == nil || !progress.CompletedAt.Equal(done) {
		t.Fatalf("completed_at = %v", progress.CompletedAt)
	}
	if progress.Progress != 1 || !progress.UpdatedAt.Equal(done) {
		t.Fatalf("got %+v", progress)
	}
}
