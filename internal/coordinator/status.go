package coordinator

import "sync"

type Op string

const (
	OpAddExercise        Op = "addExercise"
	OpDeleteExercise     Op = "deleteExercise"
	OpUpdateExerciseNote Op = "updateExerciseNote"
	OpAddSet             Op = "addSet"
	OpDeleteSet          Op = "deleteSet"
	OpEditSet            Op = "editSet"
	OpUpdateSet          Op = "updateSet"
	OpCompleteWorkout    Op = "completeWorkout"
	OpUpdateSentiment    Op = "updateSentiment"
)

type OpStatus string

const (
	StatusNone    OpStatus = ""
	StatusPending OpStatus = "pending"
	StatusSuccess OpStatus = "success"
	StatusError   OpStatus = "error"
)

// State is the lifecycle of a collection's optimistic patch.
type State string

const (
	StateIdle       State = "idle"
	StateOptimistic State = "optimistic"
	StateCommitted  State = "committed"
	StateRolledBack State = "rolledBack"
)

type statuses struct {
	mu   sync.Mutex
	last map[Op]OpStatus
}

func newStatuses() *statuses {
	return &statuses{last: make(map[Op]OpStatus)}
}

func (s *statuses) set(op Op, status OpStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[op] = status
}

func (s *statuses) get(op Op) OpStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[op]
}
