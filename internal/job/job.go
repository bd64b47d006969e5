package job

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"webinar-counter-backend/internal/occupancy"
)

// ErrNotFound means the job id is unknown, evicted, or has not completed yet.
var ErrNotFound = errors.New("job not found")

// State is the lifecycle state of a job. Transitions are one-shot:
// Running -> Done or Running -> Failed.
type State string

const (
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Terminal log sentinels. Exactly one is appended, as the final line.
const (
	SentinelDone   = "DONE"
	SentinelFailed = "FAILED"
)

// Result is the stored output of a successful job.
type Result struct {
	// Dates lists every discovered event date, ascending.
	Dates []string `json:"dates"`
	// PerDate holds the full count sequence for each date.
	PerDate map[string][]occupancy.Point `json:"all_counts"`
	// Primary is the count sequence for the first discovered date, the one
	// the CSV artifact was written for.
	Primary []occupancy.Point `json:"rows"`
	// ArtifactName is the generated CSV file name.
	ArtifactName string `json:"csv"`
}

// Job is one asynchronous run of the counting pipeline. Its log channel has a
// single producer (the worker) and a single logical consumer.
type Job struct {
	ID string

	mu     sync.Mutex
	state  State
	logs   chan string
	result *Result
}

func newJob(id string, logBuffer int) *Job {
	return &Job{
		ID:    id,
		state: StateRunning,
		logs:  make(chan string, logBuffer),
	}
}

// State returns the current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Logs returns the job's log channel. It is closed after the terminal
// sentinel has been appended; no lines ever follow.
func (j *Job) Logs() <-chan string {
	return j.logs
}

// logf appends a timestamped progress line. The producer never blocks: when
// the buffer is full the oldest line is discarded to make room. Only the
// worker goroutine appends, so the freed slot cannot be stolen by another
// producer.
func (j *Job) logf(format string, args ...any) {
	j.push(fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...)))
}

func (j *Job) push(line string) {
	select {
	case j.logs <- line:
	default:
		select {
		case <-j.logs:
		default:
		}
		j.logs <- line
	}
}

// succeed stores the result, appends the DONE sentinel and closes the log
// channel. No-op if the job is already terminal.
func (j *Job) succeed(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != StateRunning {
		return
	}
	j.state = StateDone
	j.result = res
	j.push(SentinelDone)
	close(j.logs)
}

// fail appends the FAILED sentinel and closes the log channel. No partial
// result is retained. No-op if the job is already terminal.
func (j *Job) fail() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != StateRunning {
		return
	}
	j.state = StateFailed
	j.push(SentinelFailed)
	close(j.logs)
}

// Result returns the stored result once the job is Done.
func (j *Job) Result() (*Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != StateDone {
		return nil, false
	}
	return j.result, true
}
