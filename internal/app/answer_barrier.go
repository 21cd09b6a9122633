package app

import "quiz-room-service/internal/domain"

// answerBarrier is the synchronization gate for one question index. It
// collects pending answers until every active participant has submitted
// or an external timeout closes it. The owning Room's mutex guards all
// access; the barrier itself carries no locking.
type answerBarrier struct {
	index   int
	pending map[domain.Identity]string
	closed  bool
}

func newAnswerBarrier(index int) *answerBarrier {
	return &answerBarrier{
		index:   index,
		pending: make(map[domain.Identity]string),
	}
}

// submit records identity's answer. Before closure a repeat submission
// overwrites the previous value without counting twice; after closure it
// is rejected.
func (b *answerBarrier) submit(identity domain.Identity, value string) error {
	if b.closed {
		return domain.ErrRoundClosed
	}
	b.pending[identity] = value
	return nil
}

// satisfied reports whether every active participant has an answer
// recorded. A participant leaving mid-round shrinks the active set, so a
// departure alone can satisfy the barrier.
func (b *answerBarrier) satisfied(active []*domain.Participant) bool {
	if b.closed {
		return false
	}
	for _, p := range active {
		if _, ok := b.pending[p.Name]; !ok {
			return false
		}
	}
	return true
}

// close seals the barrier; it cannot reopen.
func (b *answerBarrier) close() {
	b.closed = true
}

// answers returns the recorded submissions.
func (b *answerBarrier) answers() map[domain.Identity]string {
	return b.pending
}
