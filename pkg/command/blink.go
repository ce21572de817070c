package command

import (
	"context"
	"sync"
	"time"

	"github.com/robotalks/keylight/pkg/led"
)

// BlinkStep is the granularity of blink delays.
const BlinkStep = 10 * time.Millisecond

// Blink describes a bounded key blink.
type Blink struct {
	Key   int
	Color led.Color
	// Toggles is the number of color changes; each blink is two toggles.
	Toggles int
	// Steps is the number of BlinkSteps between toggles.
	Steps int
}

type blinkTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Blinkers runs at most one blink task per key on a mask layer.
type Blinkers struct {
	Buffer *led.Buffer
	Step   time.Duration

	lock  sync.Mutex
	tasks map[int]*blinkTask
}

// NewBlinkers creates Blinkers on buf.
func NewBlinkers(buf *led.Buffer) *Blinkers {
	return &Blinkers{Buffer: buf, Step: BlinkStep, tasks: make(map[int]*blinkTask)}
}

// Start stops and joins the running task of the same key, then starts a
// new task.
func (b *Blinkers) Start(ctx context.Context, blink Blink) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.stopLocked(blink.Key)
	taskCtx, cancel := context.WithCancel(ctx)
	task := &blinkTask{cancel: cancel, done: make(chan struct{})}
	b.tasks[blink.Key] = task
	go b.run(taskCtx, task, blink)
}

// Stop cancels and joins the task of a key.
func (b *Blinkers) Stop(key int) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.stopLocked(key)
}

// StopAll cancels and joins all tasks.
func (b *Blinkers) StopAll() {
	b.lock.Lock()
	defer b.lock.Unlock()
	for key := range b.tasks {
		b.stopLocked(key)
	}
}

// Running returns the number of unfinished tasks.
func (b *Blinkers) Running() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	n := 0
	for _, task := range b.tasks {
		select {
		case <-task.done:
		default:
			n++
		}
	}
	return n
}

func (b *Blinkers) stopLocked(key int) {
	if task := b.tasks[key]; task != nil {
		task.cancel()
		<-task.done
		delete(b.tasks, key)
	}
}

func (b *Blinkers) run(ctx context.Context, task *blinkTask, blink Blink) {
	defer close(task.done)
	defer b.Buffer.Set(blink.Key, led.Transparent)
	on := true
	for n := 0; n < blink.Toggles; n++ {
		if on {
			b.Buffer.Set(blink.Key, blink.Color)
		} else {
			b.Buffer.Set(blink.Key, led.Off)
		}
		on = !on
		for i := 0; i < blink.Steps; i++ {
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.Step):
			}
		}
	}
}
