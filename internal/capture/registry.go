package capture

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"captureplane/internal/session"
)

// RegistryOptions tune the registry. Zero values get sane defaults.
type RegistryOptions struct {
	// Retention is how long terminal jobs stay queryable before eviction.
	Retention time.Duration

	// PausePoll is the idle-wait poll interval of paused jobs.
	PausePoll time.Duration

	// CaptureDir is the output directory for bulk captures without a session.
	CaptureDir string

	// CalibrationDir is the root for calibration frame sets.
	CalibrationDir string
}

// Registry owns the id -> job mapping, routes control commands, and evicts
// terminal jobs after the retention window. It is safe for concurrent use.
type Registry struct {
	device    Device
	sessions  session.Store
	flatMeter FlatMeter
	logger    *slog.Logger
	opts      RegistryOptions

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates a registry. sessions and flatMeter may be nil; jobs
// referencing a session then fail at creation, and flat ADU tracking is off.
func NewRegistry(device Device, sessions session.Store, flatMeter FlatMeter, logger *slog.Logger, opts RegistryOptions) *Registry {
	if opts.Retention <= 0 {
		opts.Retention = 5 * time.Minute
	}
	if opts.PausePoll <= 0 {
		opts.PausePoll = 100 * time.Millisecond
	}
	if opts.CaptureDir == "" {
		opts.CaptureDir = "captures/default"
	}
	if opts.CalibrationDir == "" {
		opts.CalibrationDir = "calibration_frames"
	}
	return &Registry{
		device:    device,
		sessions:  sessions,
		flatMeter: flatMeter,
		logger:    logger.With("component", "capture-registry"),
		opts:      opts,
		jobs:      map[string]*Job{},
	}
}

// Start validates the spec, allocates a job, and launches its capture
// goroutine. It returns the initial status immediately.
func (r *Registry) Start(ctx context.Context, spec SequenceSpec) (JobStatus, error) {
	if err := spec.Validate(); err != nil {
		return JobStatus{}, err
	}

	if !r.device.IsConnected() {
		return JobStatus{}, ErrDeviceUnavailable
	}

	outputDir, sessionTarget, err := r.resolveOutput(spec)
	if err != nil {
		return JobStatus{}, err
	}

	id := uuid.New().String()
	job := newJob(id, spec, outputDir, sessionTarget, r.device, r.sessions, r.flatMeter, r.logger, r.opts.PausePoll)
	job.state = StateRunning

	r.mu.Lock()
	r.jobs[id] = job
	r.mu.Unlock()

	// The run outlives the creating request; jobs are stopped via Cancel,
	// not via the caller's context.
	go func() {
		job.run(context.WithoutCancel(ctx))
		time.AfterFunc(r.opts.Retention, func() { r.evict(id) })
	}()

	r.logger.Info("started capture job", "job_id", id, "kind", string(spec.Kind), "frames", spec.FrameCount)
	return job.Status(), nil
}

// resolveOutput picks the destination directory and session target name.
func (r *Registry) resolveOutput(spec SequenceSpec) (outputDir, sessionTarget string, err error) {
	if spec.SessionID != "" {
		if r.sessions == nil {
			return "", "", session.ErrNotFound
		}
		info, err := r.sessions.Get(spec.SessionID)
		if err != nil {
			return "", "", err
		}
		path, err := r.sessions.CapturesPath(spec.SessionID)
		if err != nil {
			return "", "", err
		}
		return path, info.Target, nil
	}

	if spec.SavePath != "" {
		return spec.SavePath, "", nil
	}

	if spec.IsCalibration() {
		// calibration_frames/2025-06-23/dark/
		date := time.Now().Format("2006-01-02")
		return filepath.Join(r.opts.CalibrationDir, date, string(spec.Kind)), "", nil
	}

	return r.opts.CaptureDir, "", nil
}

// Get returns the status of one job.
func (r *Registry) Get(id string) (JobStatus, error) {
	job, err := r.lookup(id)
	if err != nil {
		return JobStatus{}, err
	}
	return job.Status(), nil
}

// List returns a snapshot of all tracked jobs, including terminal ones still
// inside the retention window.
func (r *Registry) List() []JobStatus {
	r.mu.RLock()
	jobs := make([]*Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j)
	}
	r.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(jobs))
	for _, j := range jobs {
		statuses = append(statuses, j.Status())
	}
	return statuses
}

// Pause routes a pause command to the job.
func (r *Registry) Pause(id string) error {
	job, err := r.lookup(id)
	if err != nil {
		return err
	}
	return job.Pause()
}

// Resume routes a resume command to the job.
func (r *Registry) Resume(id string) error {
	job, err := r.lookup(id)
	if err != nil {
		return err
	}
	return job.Resume()
}

// Cancel routes a cancel command to the job.
func (r *Registry) Cancel(id string) error {
	job, err := r.lookup(id)
	if err != nil {
		return err
	}
	return job.Cancel()
}

// Delete removes a terminal job ahead of its retention eviction.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if !job.Status().State.Terminal() {
		return fmt.Errorf("%w: cannot delete a running job", ErrInvalidTransition)
	}
	delete(r.jobs, id)
	return nil
}

// Active returns the number of non-terminal jobs, for the metrics gauge.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, j := range r.jobs {
		if !j.Status().State.Terminal() {
			n++
		}
	}
	return n
}

func (r *Registry) lookup(id string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (r *Registry) evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; ok {
		delete(r.jobs, id)
		r.logger.Info("evicted finished job", "job_id", id)
	}
}
