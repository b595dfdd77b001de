package evaluation

import (
	"context"
	"errors"
	"sync"
)

// AttemptState tracks one quiz-taking session:
// answering -> submitting -> results | answering (on error).
type AttemptState string

const (
	StateAnswering  AttemptState = "answering"
	StateSubmitting AttemptState = "submitting"
	StateResults    AttemptState = "results"
)

var (
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrAttemptFinished = errors.New("attempt already has results")
	ErrIncomplete      = errors.New("not all questions are answered")
	ErrAttemptClosed   = errors.New("attempt discarded")
)

// SubmitFunc delivers packaged answers and returns the server's verdict.
type SubmitFunc func(ctx context.Context, answers []Answer) (Result, error)

// Attempt holds one quiz instance's transient answers until submission.
// Questions may be visited in any order and re-answered freely while
// answering; a submit in flight blocks further mutation and a second submit;
// results are terminal; Close discards everything.
type Attempt struct {
	mu        sync.Mutex
	state     AttemptState
	closed    bool
	questions []Question
	picked    map[int]int // questionID -> option index
	order     []int       // first-answer order
	result    *Result
}

func NewAttempt(questions []Question) *Attempt {
	return &Attempt{
		state:     StateAnswering,
		questions: questions,
		picked:    make(map[int]int, len(questions)),
	}
}

func (a *Attempt) State() AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Answer records or replaces the option picked for a question.
func (a *Attempt) Answer(questionID, option int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrAttemptClosed
	}
	if a.state != StateAnswering {
		if a.state == StateSubmitting {
			return ErrSubmitInFlight
		}
		return ErrAttemptFinished
	}
	if !a.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	if _, ok := a.picked[questionID]; !ok {
		a.order = append(a.order, questionID)
	}
	a.picked[questionID] = option
	return nil
}

func (a *Attempt) AnsweredCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.picked)
}

func (a *Attempt) Complete() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.picked) == len(a.questions)
}

// Answers packages the picked options in first-answer order.
func (a *Attempt) Answers() []Answer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.answersLocked()
}

func (a *Attempt) answersLocked() []Answer {
	out := make([]Answer, 0, len(a.order))
	for _, qid := range a.order {
		out = append(out, Answer{QuestionID: qid, Answer: a.picked[qid]})
	}
	return out
}

// Submit sends the attempt's answers once. With force unset an incomplete
// attempt is refused with ErrIncomplete so the caller can warn the user;
// retrying with force submits the partial set. A failed submission returns
// the attempt to answering for a manual retry; success is terminal.
func (a *Attempt) Submit(ctx context.Context, send SubmitFunc, force bool) (Result, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return Result{}, ErrAttemptClosed
	}
	switch a.state {
	case StateSubmitting:
		a.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	case StateResults:
		a.mu.Unlock()
		return Result{}, ErrAttemptFinished
	}
	if !force && len(a.picked) < len(a.questions) {
		a.mu.Unlock()
		return Result{}, ErrIncomplete
	}
	a.state = StateSubmitting
	answers := a.answersLocked()
	a.mu.Unlock()

	res, err := send(ctx, answers)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		// component went away while the request was in flight; drop the
		// response instead of mutating discarded state
		return Result{}, ErrAttemptClosed
	}
	if err != nil {
		a.state = StateAnswering
		return Result{}, err
	}
	a.state = StateResults
	a.result = &res
	return res, nil
}

// Result returns the verdict once, nil before submission succeeds.
func (a *Attempt) Result() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Close discards the attempt's local state. Idempotent.
func (a *Attempt) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.picked = nil
	a.order = nil
	a.result = nil
}

func (a *Attempt) hasQuestion(id int) bool {
	for _, q := range a.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}
