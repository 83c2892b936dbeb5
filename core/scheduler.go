package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
	queued   bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps timers sorted by wake time and runs the due ones from
// the main loop. Wake times are compared wrap-safely, so timers keep
// firing in order across a clock wrap.
type Scheduler struct {
	timerList *Timer
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// ScheduleTimer adds a timer to the schedule.
// A timer that is already queued is moved to its new wake time.
func (s *Scheduler) ScheduleTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if t.queued {
		s.removeTimer(t)
	}
	s.insertTimer(t)
}

// CancelTimer removes a timer if it is queued
func (s *Scheduler) CancelTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if t.queued {
		s.removeTimer(t)
	}
}

// Pending reports whether t is queued
func (s *Scheduler) Pending(t *Timer) bool {
	return t.queued
}

// insertTimer inserts a timer in sorted order by WakeTime
func (s *Scheduler) insertTimer(t *Timer) {
	t.queued = true
	if s.timerList == nil || before(t.WakeTime, s.timerList.WakeTime) {
		t.Next = s.timerList
		s.timerList = t
		return
	}

	current := s.timerList
	for current.Next != nil && !before(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

func (s *Scheduler) removeTimer(t *Timer) {
	if s.timerList == t {
		s.timerList = t.Next
	} else {
		for current := s.timerList; current != nil; current = current.Next {
			if current.Next == t {
				current.Next = t.Next
				break
			}
		}
	}
	t.Next = nil
	t.queued = false
}

// Dispatch runs all timers with WakeTime at or before now
func (s *Scheduler) Dispatch(now uint32) {
	for {
		state := disableInterrupts()
		timer := s.timerList
		if timer == nil || !Reached(now, timer.WakeTime) {
			restoreInterrupts(state)
			return
		}
		s.timerList = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references
		timer.queued = false
		restoreInterrupts(state)

		// Handlers run with interrupts enabled and may reschedule themselves
		if timer.Handler(timer) == SF_RESCHEDULE {
			s.ScheduleTimer(timer)
		}
	}
}

// before orders wake times wrap-safely
func before(a, b uint32) bool {
	return int32(a-b) < 0
}
