// Package job runs the attendee counting pipeline off the request path: one
// background unit of work per submitted table, with a sequential log channel
// and an in-memory, TTL-evicted result registry.
package job

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"webinar-counter-backend/internal/dedup"
	"webinar-counter-backend/internal/interval"
	"webinar-counter-backend/internal/metrics"
	"webinar-counter-backend/internal/occupancy"
	"webinar-counter-backend/internal/report"
	"webinar-counter-backend/internal/tabular"
	"webinar-counter-backend/internal/timeline"
)

// Options bundles the pipeline dependencies.
type Options struct {
	Store    *timeline.Store
	Writer   *report.Writer
	Metrics  *metrics.Metrics
	Location *time.Location

	Workers   int
	QueueSize int
	LogBuffer int
	ResultTTL time.Duration
}

// submission pairs a registered job with its input and the configuration
// snapshot captured at submit time. A settings write during an in-flight job
// has no effect on it.
type submission struct {
	job   *Job
	table *tabular.Table
	cfg   timeline.Config
}

// Pipeline accepts tables, runs the counting computation on a worker pool and
// keeps results until the registry TTL evicts them.
type Pipeline struct {
	registry  *cache.Cache
	store     *timeline.Store
	writer    *report.Writer
	metrics   *metrics.Metrics
	loc       *time.Location
	queue     chan submission
	workers   int
	logBuffer int
}

// New creates a pipeline. Call Start before submitting.
func New(opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.LogBuffer <= 0 {
		opts.LogBuffer = 256
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = 24 * time.Hour
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(prometheus.NewRegistry())
	}
	return &Pipeline{
		registry:  cache.New(opts.ResultTTL, opts.ResultTTL/2),
		store:     opts.Store,
		writer:    opts.Writer,
		metrics:   opts.Metrics,
		loc:       opts.Location,
		queue:     make(chan submission, opts.QueueSize),
		workers:   opts.Workers,
		logBuffer: opts.LogBuffer,
	}
}

// Start launches the worker goroutines.
func (p *Pipeline) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx, i)
	}
}

func (p *Pipeline) worker(ctx context.Context, id int) {
	log.Printf("job worker %d started", id)
	for {
		select {
		case sub := <-p.queue:
			p.run(sub)
		case <-ctx.Done():
			log.Printf("job worker %d shutting down", id)
			return
		}
	}
}

// Submit registers a fresh job for the table and schedules it. It returns the
// job id immediately and never blocks on the computation: when the queue is
// full the job runs on its own goroutine instead.
func (p *Pipeline) Submit(table *tabular.Table) string {
	id := uuid.NewString()
	j := newJob(id, p.logBuffer)
	p.registry.Set(id, j, cache.DefaultExpiration)
	p.metrics.JobsSubmitted.Inc()

	sub := submission{job: j, table: table, cfg: p.store.Read()}
	select {
	case p.queue <- sub:
	default:
		go p.run(sub)
	}
	return id
}

// Subscribe returns the job's log channel. Lines buffered before the call may
// be observed; the channel is closed once the terminal sentinel has been
// appended, so a range over it always terminates.
func (p *Pipeline) Subscribe(id string) (<-chan string, error) {
	j, err := p.lookup(id)
	if err != nil {
		return nil, err
	}
	return j.Logs(), nil
}

// Result returns the stored result for a completed job. ErrNotFound covers
// both an unknown id and a job that has not reached Done.
func (p *Pipeline) Result(id string) (*Result, error) {
	j, err := p.lookup(id)
	if err != nil {
		return nil, err
	}
	res, ok := j.Result()
	if !ok {
		return nil, ErrNotFound
	}
	return res, nil
}

// State reports the lifecycle state of a job.
func (p *Pipeline) State(id string) (State, error) {
	j, err := p.lookup(id)
	if err != nil {
		return "", err
	}
	return j.State(), nil
}

func (p *Pipeline) lookup(id string) (*Job, error) {
	v, found := p.registry.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	return v.(*Job), nil
}

// run executes the whole computation for one submission. Every engine error
// is absorbed here: it becomes a final explanatory log line plus the FAILED
// sentinel, never a fault for the caller.
func (p *Pipeline) run(sub submission) {
	j := sub.job
	started := time.Now()

	j.logf("processing table (%d rows)", len(sub.table.Rows))

	if err := tabular.Normalize(sub.table); err != nil {
		p.abort(j, started, err)
		return
	}
	j.logf("columns normalized")

	resolution := dedup.Resolve(sub.table)
	j.logf("%s", resolution.Describe())

	iv, err := interval.Build(sub.table, resolution.Keys, p.loc)
	if err != nil {
		p.abort(j, started, err)
		return
	}
	j.logf("dropped %d invalid rows", iv.Dropped)
	p.metrics.RowsDropped.Add(float64(iv.Dropped))

	dateKeys := make([]string, len(iv.Dates))
	for i, d := range iv.Dates {
		dateKeys[i] = interval.DateKey(d)
	}
	j.logf("dates found: %s", strings.Join(dateKeys, ", "))

	perDate := make(map[string][]occupancy.Point, len(iv.Dates))
	for i, date := range iv.Dates {
		j.logf("analyzing %s ...", dateKeys[i])
		points := occupancy.Count(iv.ForDate(date), date, sub.cfg.Points, sub.cfg.Annotations)
		for _, pt := range points {
			j.logf("[ %s ] -> %s", pt.Time, pt.Display)
		}
		perDate[dateKeys[i]] = points
	}

	primaryKey := dateKeys[0]
	artifact, err := p.writer.Write(primaryKey, perDate[primaryKey])
	if err != nil {
		p.abort(j, started, err)
		return
	}
	j.logf("report saved: %s", artifact)
	if len(dateKeys) > 1 {
		// The CSV covers the first date only; the rest stay in the result.
		j.logf("report covers %s only; %d more date(s) available in the result", primaryKey, len(dateKeys)-1)
	}

	j.succeed(&Result{
		Dates:        dateKeys,
		PerDate:      perDate,
		Primary:      perDate[primaryKey],
		ArtifactName: artifact,
	})
	p.metrics.JobsFinished.WithLabelValues(string(StateDone)).Inc()
	p.metrics.JobDuration.Observe(time.Since(started).Seconds())
}

func (p *Pipeline) abort(j *Job, started time.Time, err error) {
	j.logf("error: %v", err)
	j.fail()
	p.metrics.JobsFinished.WithLabelValues(string(StateFailed)).Inc()
	p.metrics.JobDuration.Observe(time.Since(started).Seconds())
}
