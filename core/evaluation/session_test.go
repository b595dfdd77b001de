package evaluation

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
)

func okSend(res Result) SubmitFunc {
	return func(context.Context, []Answer) (Result, error) { return res, nil }
}

func Test_Attempt_Answer(t *testing.T) {
	a := NewAttempt(threeQuestions())

	if err := a.Answer(1, 0); err != nil {
		t.Fatalf("Answer() failed: %v", err)
	}
	if err := a.Answer(1, 2); err != nil { // replace
		t.Fatalf("re-Answer() failed: %v", err)
	}
	if got := a.AnsweredCount(); got != 1 {
		t.Errorf("AnsweredCount() = %d, want 1", got)
	}
	if a.Complete() {
		t.Error("Complete() = true with 1 of 3 answered")
	}

	if err := a.Answer(99, 0); err != ErrUnknownQuestion {
		t.Errorf("Answer(unknown) error = %v, want ErrUnknownQuestion", err)
	}

	answers := a.Answers()
	if len(answers) != 1 || answers[0] != (Answer{QuestionID: 1, Answer: 2}) {
		t.Errorf("Answers() = %+v", answers)
	}
}

func Test_Attempt_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete refused without force", func(t *testing.T) {
		a := NewAttempt(threeQuestions())
		_ = a.Answer(1, 0)

		if _, err := a.Submit(ctx, okSend(Result{}), false); err != ErrIncomplete {
			t.Fatalf("Submit() error = %v, want ErrIncomplete", err)
		}
		if a.State() != StateAnswering {
			t.Errorf("state = %v, want answering", a.State())
		}

		// forcing submits the partial set
		if _, err := a.Submit(ctx, okSend(Result{Score: 33.3}), true); err != nil {
			t.Fatalf("forced Submit() failed: %v", err)
		}
		if a.State() != StateResults {
			t.Errorf("state = %v, want results", a.State())
		}
	})

	t.Run("failure returns to answering", func(t *testing.T) {
		a := NewAttempt(threeQuestions())
		_ = a.Answer(1, 0)
		_ = a.Answer(2, 1)
		_ = a.Answer(3, 2)

		boom := errors.New("network down")
		send := func(context.Context, []Answer) (Result, error) { return Result{}, boom }
		if _, err := a.Submit(ctx, send, false); errors.Cause(err) != boom {
			t.Fatalf("Submit() error = %v, want %v", err, boom)
		}
		if a.State() != StateAnswering {
			t.Errorf("state after failure = %v, want answering", a.State())
		}
		if a.Result() != nil {
			t.Error("Result() non-nil after failed submission")
		}

		// retry succeeds
		if _, err := a.Submit(ctx, okSend(Result{Score: 100, Passed: true}), false); err != nil {
			t.Fatalf("retry Submit() failed: %v", err)
		}
		if res := a.Result(); res == nil || !res.Passed {
			t.Errorf("Result() = %+v", res)
		}
	})

	t.Run("second submit refused", func(t *testing.T) {
		a := NewAttempt(threeQuestions())
		_ = a.Answer(1, 0)
		_ = a.Answer(2, 1)
		_ = a.Answer(3, 2)

		if _, err := a.Submit(ctx, okSend(Result{}), false); err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		if _, err := a.Submit(ctx, okSend(Result{}), false); err != ErrAttemptFinished {
			t.Errorf("second Submit() error = %v, want ErrAttemptFinished", err)
		}
		if err := a.Answer(1, 1); err != ErrAttemptFinished {
			t.Errorf("Answer() after results error = %v, want ErrAttemptFinished", err)
		}
	})

	t.Run("concurrent submit blocked", func(t *testing.T) {
		a := NewAttempt(threeQuestions())
		_ = a.Answer(1, 0)
		_ = a.Answer(2, 1)
		_ = a.Answer(3, 2)

		started := make(chan struct{})
		release := make(chan struct{})
		send := func(context.Context, []Answer) (Result, error) {
			close(started)
			<-release
			return Result{}, nil
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = a.Submit(ctx, send, false)
		}()

		<-started
		if _, err := a.Submit(ctx, okSend(Result{}), false); err != ErrSubmitInFlight {
			t.Errorf("Submit() during flight error = %v, want ErrSubmitInFlight", err)
		}
		if err := a.Answer(1, 1); err != ErrSubmitInFlight {
			t.Errorf("Answer() during flight error = %v, want ErrSubmitInFlight", err)
		}
		close(release)
		wg.Wait()
	})

	t.Run("close during flight drops the response", func(t *testing.T) {
		a := NewAttempt(threeQuestions())
		_ = a.Answer(1, 0)
		_ = a.Answer(2, 1)
		_ = a.Answer(3, 2)

		started := make(chan struct{})
		release := make(chan struct{})
		send := func(context.Context, []Answer) (Result, error) {
			close(started)
			<-release
			return Result{Score: 100}, nil
		}

		resChan := make(chan error, 1)
		go func() {
			_, err := a.Submit(ctx, send, false)
			resChan <- err
		}()

		<-started
		a.Close()
		close(release)

		if err := <-resChan; err != ErrAttemptClosed {
			t.Errorf("Submit() after Close error = %v, want ErrAttemptClosed", err)
		}
		if a.Result() != nil {
			t.Error("Result() non-nil on a closed attempt")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		a := NewAttempt(threeQuestions())
		a.Close()
		a.Close()
		if err := a.Answer(1, 0); err != ErrAttemptClosed {
			t.Errorf("Answer() on closed attempt error = %v, want ErrAttemptClosed", err)
		}
		if _, err := a.Submit(ctx, okSend(Result{}), true); err != ErrAttemptClosed {
			t.Errorf("Submit() on closed attempt error = %v, want ErrAttemptClosed", err)
		}
	})
}
