package models

import "fmt"

type QuestStatus string

const (
	// assigned by onboarding, not started yet
	QuestStatusActive  QuestStatus = "active"
	QuestStatusBlocked QuestStatus = "blocked"

	QuestStatusInProgress       QuestStatus = "IN_PROGRESS"
	QuestStatusReviewPending    QuestStatus = "REVIEW_PENDING"
	QuestStatusChangesRequested QuestStatus = "CHANGES_REQUESTED"
	QuestStatusTaskCompleted    QuestStatus = "TASK_COMPLETED"
)

var QuestStatuses = []QuestStatus{
	QuestStatusActive,
	QuestStatusBlocked,
	QuestStatusInProgress,
	QuestStatusReviewPending,
	QuestStatusChangesRequested,
	QuestStatusTaskCompleted,
}

type QuestOp string

const (
	QuestOpAccept         QuestOp = "accept"
	QuestOpSubmit         QuestOp = "submit"
	QuestOpRequestChanges QuestOp = "request_changes"
	QuestOpComplete       QuestOp = "complete"
	QuestOpUnlock         QuestOp = "unlock"
)

var QuestOps = []QuestOp{
	QuestOpAccept,
	QuestOpSubmit,
	QuestOpRequestChanges,
	QuestOpComplete,
	QuestOpUnlock,
}

// Rejection tells the caller which class of error a refused transition is.
type Rejection int

const (
	RejectNone Rejection = iota
	RejectConflict
	RejectInvalidState
)

type transition struct {
	next   QuestStatus
	reject Rejection
}

func to(next QuestStatus) transition { return transition{next: next} }

var (
	conflict     = transition{reject: RejectConflict}
	invalidState = transition{reject: RejectInvalidState}
)

// questTransitions must cover every status × op pair.
var questTransitions = map[QuestStatus]map[QuestOp]transition{
	QuestStatusActive: {
		QuestOpAccept:         to(QuestStatusInProgress),
		QuestOpSubmit:         invalidState,
		QuestOpRequestChanges: invalidState,
		QuestOpComplete:       invalidState,
		QuestOpUnlock:         invalidState,
	},
	QuestStatusBlocked: {
		QuestOpAccept:         invalidState,
		QuestOpSubmit:         invalidState,
		QuestOpRequestChanges: invalidState,
		QuestOpComplete:       invalidState,
		QuestOpUnlock:         to(QuestStatusActive),
	},
	QuestStatusInProgress: {
		QuestOpAccept:         conflict,
		QuestOpSubmit:         to(QuestStatusReviewPending),
		QuestOpRequestChanges: invalidState,
		QuestOpComplete:       invalidState,
		QuestOpUnlock:         invalidState,
	},
	QuestStatusReviewPending: {
		QuestOpAccept:         conflict,
		QuestOpSubmit:         conflict,
		QuestOpRequestChanges: to(QuestStatusChangesRequested),
		QuestOpComplete:       to(QuestStatusTaskCompleted),
		QuestOpUnlock:         invalidState,
	},
	QuestStatusChangesRequested: {
		QuestOpAccept:         conflict,
		QuestOpSubmit:         to(QuestStatusReviewPending),
		QuestOpRequestChanges: invalidState,
		QuestOpComplete:       invalidState,
		QuestOpUnlock:         invalidState,
	},
	QuestStatusTaskCompleted: {
		QuestOpAccept:         conflict,
		QuestOpSubmit:         conflict,
		QuestOpRequestChanges: invalidState,
		QuestOpComplete:       invalidState,
		QuestOpUnlock:         invalidState,
	},
}

// Next looks up the transition for op from status. An unknown status or op is
// always an invalid state.
func (status QuestStatus) Next(op QuestOp) (QuestStatus, Rejection) {
	ops, ok := questTransitions[status]
	if !ok {
		return status, RejectInvalidState
	}
	t, ok := ops[op]
	if !ok {
		return status, RejectInvalidState
	}
	if t.reject != RejectNone {
		return status, t.reject
	}
	return t.next, RejectNone
}

func (status QuestStatus) Terminal() bool {
	return status == QuestStatusTaskCompleted
}

func (status QuestStatus) Valid() bool {
	_, ok := questTransitions[status]
	return ok
}

func ParseQuestOp(s string) (QuestOp, error) {
	for _, op := range QuestOps {
		if string(op) == s {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown quest operation %q", s)
}
