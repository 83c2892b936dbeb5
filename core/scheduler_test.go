package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsDueTimersInOrder(t *testing.T) {
	s := NewScheduler()
	var fired []uint32

	record := func(tm *Timer) uint8 {
		fired = append(fired, tm.WakeTime)
		return SF_DONE
	}
	timers := []*Timer{
		{WakeTime: 300, Handler: record},
		{WakeTime: 100, Handler: record},
		{WakeTime: 200, Handler: record},
	}
	for _, tm := range timers {
		s.ScheduleTimer(tm)
	}

	s.Dispatch(99)
	assert.Empty(t, fired)

	s.Dispatch(200)
	assert.Equal(t, []uint32{100, 200}, fired)
	assert.True(t, s.Pending(timers[0]))
	assert.False(t, s.Pending(timers[1]))

	s.Dispatch(1000)
	assert.Equal(t, []uint32{100, 200, 300}, fired)
}

func TestSchedulerReschedule(t *testing.T) {
	s := NewScheduler()
	count := 0
	tm := &Timer{WakeTime: 0, Handler: func(tm *Timer) uint8 {
		count++
		tm.WakeTime += 100
		return SF_RESCHEDULE
	}}
	s.ScheduleTimer(tm)

	s.Dispatch(250)
	assert.Equal(t, 3, count) // 0, 100, 200
	assert.Equal(t, uint32(300), tm.WakeTime)
	assert.True(t, s.Pending(tm))
}

func TestSchedulerMoveAndCancel(t *testing.T) {
	s := NewScheduler()
	fired := 0
	tm := &Timer{WakeTime: 100, Handler: func(*Timer) uint8 { fired++; return SF_DONE }}

	s.ScheduleTimer(tm)
	tm.WakeTime = 500
	s.ScheduleTimer(tm) // moves rather than queueing twice

	s.Dispatch(100)
	assert.Equal(t, 0, fired)

	s.CancelTimer(tm)
	assert.False(t, s.Pending(tm))
	s.Dispatch(1000)
	assert.Equal(t, 0, fired)
}

func TestSchedulerAcrossClockWrap(t *testing.T) {
	s := NewScheduler()
	var fired []string
	late := &Timer{WakeTime: 0xFFFFFFF0, Handler: func(*Timer) uint8 { fired = append(fired, "late"); return SF_DONE }}
	wrapped := &Timer{WakeTime: 0x10, Handler: func(*Timer) uint8 { fired = append(fired, "wrapped"); return SF_DONE }}

	s.ScheduleTimer(wrapped)
	s.ScheduleTimer(late)

	s.Dispatch(0xFFFFFFF8)
	assert.Equal(t, []string{"late"}, fired)

	s.Dispatch(0x20)
	assert.Equal(t, []string{"late", "wrapped"}, fired)
}

func TestReachedAndElapsed(t *testing.T) {
	assert.True(t, Reached(1000, 1000))
	assert.False(t, Reached(999, 1000))
	assert.True(t, Reached(10, 0xFFFFFFF0))
	assert.False(t, Reached(0xFFFFFFF0, 10))
	assert.Equal(t, uint32(26), Elapsed(10, 0xFFFFFFF0))
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(0xFFFFFFFF)
	c.Advance(2)
	assert.Equal(t, uint32(1), c.Now())
	c.Set(42)
	assert.Equal(t, uint32(42), c.Now())

	SetTime(1234)
	assert.Equal(t, uint32(1234), SystemClock{}.Now())
}
