package mainloop

import (
	"sort"
	"time"

	"github.com/bnema/panetree/internal/domain/entity"
)

// Manual is a deterministic scheduler driven by Advance. Tasks due at the
// same instant run in scheduling order.
type Manual struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

// NewManual creates a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTask struct {
	due      time.Duration
	seq      int
	fn       func()
	canceled bool
	fired    bool
}

func (t *manualTask) Cancel() bool {
	if t.canceled || t.fired {
		return false
	}
	t.canceled = true
	return true
}

// AfterFunc schedules fn d after the current manual time.
func (m *Manual) AfterFunc(d time.Duration, fn func()) entity.Task {
	m.seq++
	t := &manualTask{due: m.now + d, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves time forward by d and runs every task that became due,
// including tasks scheduled by those callbacks. It returns how many ran.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	ran := 0
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		if next.due > m.now {
			m.now = next.due
		}
		next.fired = true
		next.fn()
		ran++
	}
	m.now = target
	m.compact()
	return ran
}

// Pending returns the number of tasks neither run nor canceled.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.tasks {
		if !t.fired && !t.canceled {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(limit time.Duration) *manualTask {
	candidates := make([]*manualTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if !t.fired && !t.canceled && t.due <= limit {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].due == candidates[j].due {
			return candidates[i].seq < candidates[j].seq
		}
		return candidates[i].due < candidates[j].due
	})
	return candidates[0]
}

func (m *Manual) compact() {
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.fired && !t.canceled {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
}
