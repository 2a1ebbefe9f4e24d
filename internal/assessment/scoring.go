package assessment

import "errors"

// PassPercent is the inclusive pass threshold.
const PassPercent = 70

// ErrNoAttemptsLeft is returned when the attempt limit has been reached.
var ErrNoAttemptsLeft = errors.New("no attempts left")

// Score is the outcome of grading one submission.
type Score struct {
	Correct int
	Total   int
	Percent int
	Passed  bool
}

// Percent is round(100 * correct / total) with halves rounded up, matching
// the page's Math.round.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}

// Grade scores selections against key. selections maps a question field
// name ("q1".."q5") to the chosen option value; unanswered questions count
// as wrong.
func Grade(key AnswerKey, selections map[string]string) Score {
	s := Score{Total: len(key.Questions)}
	for _, q := range key.Questions {
		chosen, ok := selections[q.Name]
		if !ok {
			continue
		}
		for _, opt := range q.Options {
			if opt.Value == chosen && opt.Correct {
				s.Correct++
				break
			}
		}
	}
	s.Percent = Percent(s.Correct, s.Total)
	s.Passed = s.Percent >= PassPercent
	return s
}

// AttemptCounter applies the page's attempt rules to a sequence of
// submissions. Max zero means unlimited; Used still counts.
type AttemptCounter struct {
	Max  int
	Used int
}

// Submit grades one submission, or refuses it without scoring once the
// limit has been reached.
func (c *AttemptCounter) Submit(key AnswerKey, selections map[string]string) (Score, error) {
	if c.Exhausted() {
		return Score{}, ErrNoAttemptsLeft
	}
	score := Grade(key, selections)
	c.Used++
	return score, nil
}

// Exhausted reports whether further submissions are refused.
func (c *AttemptCounter) Exhausted() bool {
	return c.Max > 0 && c.Used >= c.Max
}

// Reset clears the counter, as the retake control does.
func (c *AttemptCounter) Reset() {
	c.Used = 0
}
