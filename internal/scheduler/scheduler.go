// Package scheduler runs the periodic curation jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const jobTimeout = 5 * time.Minute

// ErrJobNotFound is returned by RunJobNow for an unknown job name.
var ErrJobNotFound = errors.New("job not found")

// Job represents a scheduled job.
type Job struct {
	Name    string
	Spec    string
	Handler func(ctx context.Context) error

	entryID   cron.EntryID
	lastRun   time.Time
	lastError string
	running   bool
}

// JobStatus is a snapshot of a job for the admin API.
type JobStatus struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	LastRun   time.Time `json:"last_run,omitempty"`
	NextRun   time.Time `json:"next_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Running   bool      `json:"running"`
}

// Scheduler manages cron jobs.
type Scheduler struct {
	cron *cron.Cron

	jobs    []*Job
	jobsMux sync.RWMutex

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewScheduler creates a scheduler that evaluates specs in UTC.
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job under a standard five-field cron spec.
func (s *Scheduler) AddJob(name, spec string, handler func(ctx context.Context) error) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	for _, job := range s.jobs {
		if job.Name == name {
			return fmt.Errorf("job %q already registered", name)
		}
	}

	job := &Job{Name: name, Spec: spec, Handler: handler}
	id, err := s.cron.AddFunc(spec, func() { s.runJob(job) })
	if err != nil {
		return fmt.Errorf("add job %q: %w", name, err)
	}
	job.entryID = id
	s.jobs = append(s.jobs, job)

	log.Info().
		Str("job", name).
		Str("schedule", spec).
		Msg("Job registered")
	return nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if s.started {
		return
	}
	log.Info().Int("jobs", len(s.jobs)).Msg("Starting scheduler")
	s.cron.Start()
	s.started = true
}

// Stop stops the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler")

	// runJob registers with wg under jobsMux, so no Add can race the Wait below.
	s.jobsMux.Lock()
	s.cancel()
	s.jobsMux.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// runJob executes a job. A job already in progress is not started twice.
func (s *Scheduler) runJob(job *Job) {
	s.jobsMux.Lock()
	if job.running || s.ctx.Err() != nil {
		s.jobsMux.Unlock()
		return
	}
	job.running = true
	s.wg.Add(1)
	s.jobsMux.Unlock()
	defer s.wg.Done()

	log.Info().Str("job", job.Name).Msg("Running job")
	start := time.Now().UTC()

	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	err := job.Handler(ctx)
	if err != nil {
		log.Error().Err(err).Str("job", job.Name).Msg("Job failed")
	} else {
		log.Info().Str("job", job.Name).Dur("took", time.Since(start)).Msg("Job completed")
	}

	s.jobsMux.Lock()
	job.running = false
	job.lastRun = start
	job.lastError = ""
	if err != nil {
		job.lastError = err.Error()
	}
	s.jobsMux.Unlock()
}

// RunJobNow runs a specific job immediately by name.
func (s *Scheduler) RunJobNow(name string) error {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	for _, job := range s.jobs {
		if job.Name == name {
			go s.runJob(job)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrJobNotFound, name)
}

// GetJobStatus returns the status of all jobs in registration order.
func (s *Scheduler) GetJobStatus() []JobStatus {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	status := make([]JobStatus, len(s.jobs))
	for i, job := range s.jobs {
		status[i] = JobStatus{
			Name:      job.Name,
			Schedule:  job.Spec,
			LastRun:   job.lastRun,
			NextRun:   s.cron.Entry(job.entryID).Next,
			LastError: job.lastError,
			Running:   job.running,
		}
	}
	return status
}
