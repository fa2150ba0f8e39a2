package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"captureplane/internal/camera"
	"captureplane/internal/session"
)

// State is the lifecycle state of a capture job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Control errors surfaced to callers.
var (
	// ErrJobNotFound is returned for unknown job ids.
	ErrJobNotFound = errors.New("capture job not found")

	// ErrInvalidTransition is returned when a control call is not legal
	// from the job's current state.
	ErrInvalidTransition = errors.New("invalid job state transition")

	// ErrDeviceUnavailable is returned at creation time when the camera
	// is not connected.
	ErrDeviceUnavailable = errors.New("camera unavailable")
)

// disconnectedMsg is the error message recorded when the camera drops
// mid-sequence. Fixed so status pollers can rely on it.
const disconnectedMsg = "camera disconnected during capture sequence"

// defaultFlatExposure is used for flats targeting an ADU level when no
// FlatMeter is wired in to derive a better one.
const defaultFlatExposure = "1/60"

// JobStatus is a point-in-time snapshot of a job, safe to hand to callers.
type JobStatus struct {
	JobID         string     `json:"job_id"`
	Kind          FrameKind  `json:"kind"`
	State         State      `json:"state"`
	TotalFrames   int        `json:"total_frames"`
	Completed     int        `json:"completed_frames"`
	Succeeded     int        `json:"successful_frames"`
	Failed        int        `json:"failed_frames"`
	Remaining     int        `json:"remaining_frames"`
	Percentage    float64    `json:"percentage"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	LastCaptureAt *time.Time `json:"last_capture_at,omitempty"`
	ETA           *time.Time `json:"estimated_completion,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	OutputDir     string     `json:"output_directory"`
	CapturedFiles []string   `json:"captured_files"`
	SessionID     string     `json:"session_id,omitempty"`
	Temperature   *float64   `json:"current_temperature,omitempty"`
	AverageADU    *float64   `json:"average_adu,omitempty"`
}

// Job is one pausable, cancellable capture sequence. Its mutable fields are
// written by its own run goroutine; external callers only read snapshots and
// flip the pause/cancel flags through the control methods.
type Job struct {
	id            string
	spec          SequenceSpec
	outputDir     string
	sessionTarget string

	device    Device
	sessions  session.Store
	flatMeter FlatMeter
	logger    *slog.Logger
	pausePoll time.Duration

	mu            sync.Mutex
	state         State
	completed     int
	succeeded     int
	failed        int
	createdAt     time.Time
	startedAt     *time.Time
	completedAt   *time.Time
	lastCaptureAt *time.Time
	errMsg        string
	files         []string
	temperature   *float64
	aduSum        float64
	aduCount      int

	paused     atomic.Bool
	cancelled  atomic.Bool
	cancelCh   chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
}

// newJob constructs a Pending job. The registry starts its run goroutine.
func newJob(id string, spec SequenceSpec, outputDir, sessionTarget string, device Device, sessions session.Store, flatMeter FlatMeter, logger *slog.Logger, pausePoll time.Duration) *Job {
	if pausePoll <= 0 {
		pausePoll = 100 * time.Millisecond
	}
	return &Job{
		id:            id,
		spec:          spec,
		outputDir:     outputDir,
		sessionTarget: sessionTarget,
		device:        device,
		sessions:      sessions,
		flatMeter:     flatMeter,
		logger:        logger.With("job_id", id, "kind", string(spec.Kind)),
		pausePoll:     pausePoll,
		state:         StatePending,
		createdAt:     time.Now(),
		files:         []string{},
		cancelCh:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// ID returns the job identifier.
func (j *Job) ID() string { return j.id }

// Done is closed when the run goroutine has exited.
func (j *Job) Done() <-chan struct{} { return j.done }

// Pause requests a cooperative pause. Legal only while Running; the task
// stops at the next frame boundary, never mid-capture.
func (j *Job) Pause() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != StateRunning {
		return fmt.Errorf("%w: cannot pause a %s job", ErrInvalidTransition, j.state)
	}
	j.paused.Store(true)
	j.state = StatePaused
	j.logger.Info("job paused")
	return nil
}

// Resume clears the pause flag. Legal only while Paused; the task picks the
// loop back up within one poll interval.
func (j *Job) Resume() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != StatePaused {
		return fmt.Errorf("%w: cannot resume a %s job", ErrInvalidTransition, j.state)
	}
	j.paused.Store(false)
	j.state = StateRunning
	j.logger.Info("job resumed")
	return nil
}

// Cancel requests cancellation. Legal from Running or Paused. An in-flight
// frame finishes; no further frames are captured.
func (j *Job) Cancel() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != StateRunning && j.state != StatePaused {
		return fmt.Errorf("%w: cannot cancel a %s job", ErrInvalidTransition, j.state)
	}
	j.state = StateCancelled
	j.cancelled.Store(true)
	j.cancelOnce.Do(func() { close(j.cancelCh) })
	j.logger.Info("job cancelled")
	return nil
}

// Status returns a consistent snapshot.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	st := JobStatus{
		JobID:         j.id,
		Kind:          j.spec.Kind,
		State:         j.state,
		TotalFrames:   j.spec.FrameCount,
		Completed:     j.completed,
		Succeeded:     j.succeeded,
		Failed:        j.failed,
		Remaining:     Remaining(j.completed, j.spec.FrameCount),
		Percentage:    Percentage(j.completed, j.spec.FrameCount),
		CreatedAt:     j.createdAt,
		StartedAt:     j.startedAt,
		CompletedAt:   j.completedAt,
		LastCaptureAt: j.lastCaptureAt,
		ErrorMessage:  j.errMsg,
		OutputDir:     j.outputDir,
		CapturedFiles: append([]string(nil), j.files...),
		SessionID:     j.spec.SessionID,
		Temperature:   j.temperature,
	}

	if j.state == StateRunning && j.startedAt != nil {
		st.ETA = ETA(time.Now(), *j.startedAt, j.completed, j.spec.FrameCount, j.spec.Interval, j.spec.IsCalibration())
	}
	if j.aduCount > 0 {
		avg := j.aduSum / float64(j.aduCount)
		st.AverageADU = &avg
	}
	return st
}

// run executes the capture sequence. It is the only writer of the job's
// progress fields.
func (j *Job) run(ctx context.Context) {
	defer close(j.done)

	tracer := otel.Tracer("capture-engine")
	ctx, span := tracer.Start(ctx, "capture_sequence",
		trace.WithAttributes(
			attribute.String("job.id", j.id),
			attribute.String("frame.kind", string(j.spec.Kind)),
			attribute.Int("frame.count", j.spec.FrameCount),
		),
	)
	defer span.End()

	j.mu.Lock()
	if j.state == StatePending {
		j.state = StateRunning
	}
	now := time.Now()
	j.startedAt = &now
	j.mu.Unlock()

	j.logger.Info("starting capture sequence", "frames", j.spec.FrameCount, "interval", j.spec.Interval)

	if err := j.preflight(ctx); err != nil {
		span.RecordError(err)
		j.fail(err.Error())
		return
	}

	if j.spec.StartDelay > 0 {
		j.logger.Info("waiting before start", "delay", j.spec.StartDelay)
		j.sleep(j.spec.StartDelay)
	}

	j.loop(ctx, span)
	j.finish()
}

// preflight resolves and applies kind-specific camera settings before any
// frame is taken. Bulk sequences have no pre-flight.
func (j *Job) preflight(ctx context.Context) error {
	if !j.spec.IsCalibration() {
		return nil
	}

	settings := map[string]string{}
	switch j.spec.Kind {
	case KindDark, KindFlatDark:
		settings["shutter_speed"] = j.spec.ExposureTime
	case KindBias:
		shortest, err := j.device.ShortestExposure(ctx)
		if err != nil {
			return fmt.Errorf("resolving bias exposure: %w", err)
		}
		settings["shutter_speed"] = shortest
	case KindFlat:
		if j.spec.TargetADU > 0 {
			settings["shutter_speed"] = defaultFlatExposure
		} else {
			settings["shutter_speed"] = j.spec.ExposureTime
		}
	}
	if j.spec.ISO != "" {
		settings["iso"] = j.spec.ISO
	}

	report, err := j.device.UpdateSettings(ctx, settings)
	if err != nil {
		return fmt.Errorf("applying calibration settings: %w", err)
	}
	if len(report.Failed) > 0 {
		// Best-effort batch: keep going with whatever applied.
		j.logger.Warn("some calibration settings rejected", "failed", report.Failed)
	}
	return nil
}

// loop captures frames in strictly increasing index order.
func (j *Job) loop(ctx context.Context, span trace.Span) {
	total := j.spec.FrameCount
	for i := 1; i <= total; i++ {
		if j.cancelled.Load() {
			return
		}

		j.waitWhilePaused()

		// Pause may have outlasted a cancel request.
		if j.cancelled.Load() {
			return
		}

		if !j.device.IsConnected() {
			j.fail(disconnectedMsg)
			return
		}

		if j.spec.IsCalibration() {
			if st := j.device.Status(ctx); st.Temperature != nil {
				j.mu.Lock()
				j.temperature = st.Temperature
				j.mu.Unlock()
			}
		}

		name := FrameName(j.spec, j.sessionTarget, i, j.temperatureSnapshot())

		result, err := j.device.Capture(ctx, j.outputDir, name)
		if err != nil {
			if camera.IsFatal(err) {
				span.RecordError(err)
				j.fail(disconnectedMsg)
				return
			}
			j.recordFailure(ctx, i, err)
		} else {
			j.recordSuccess(ctx, i, result)
			span.AddEvent("frame_captured", trace.WithAttributes(attribute.Int("frame.index", i)))
		}

		j.mu.Lock()
		j.completed++
		j.mu.Unlock()

		if i < total && j.spec.Interval > 0 {
			j.sleep(j.spec.Interval)
		}
	}
}

// waitWhilePaused idles until the pause flag clears or the job is cancelled.
// Cancellation wakes the wait immediately; resume is seen within one poll.
func (j *Job) waitWhilePaused() {
	for j.paused.Load() && !j.cancelled.Load() {
		select {
		case <-time.After(j.pausePoll):
		case <-j.cancelCh:
			return
		}
	}
}

// sleep waits for d or until the job is cancelled, whichever comes first.
func (j *Job) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-j.cancelCh:
	}
}

func (j *Job) recordSuccess(ctx context.Context, index int, result camera.Result) {
	now := time.Now()

	j.mu.Lock()
	j.succeeded++
	j.files = append(j.files, result.Filename)
	j.lastCaptureAt = &now
	j.mu.Unlock()

	framesCaptured.Add(ctx, 1, kindAttr(j.spec.Kind))
	j.logger.Info("frame captured", "frame", index, "total", j.spec.FrameCount, "filename", result.Filename)

	if j.spec.Kind == KindFlat && j.flatMeter != nil {
		if adu, err := j.flatMeter.MeasureADU(ctx, result.Path); err != nil {
			j.logger.Warn("could not measure flat ADU level", "path", result.Path, "error", err)
		} else {
			j.mu.Lock()
			j.aduSum += adu
			j.aduCount++
			j.mu.Unlock()
		}
	}

	if j.spec.SessionID != "" && j.sessions != nil {
		var size int64
		if fi, err := os.Stat(result.Path); err == nil {
			size = fi.Size()
		}
		if err := j.sessions.AddImage(j.spec.SessionID, result.Filename, size, nil); err != nil {
			j.logger.Warn("failed to register capture with session", "error", err)
		}
	}
}

func (j *Job) recordFailure(ctx context.Context, index int, err error) {
	j.mu.Lock()
	j.failed++
	j.mu.Unlock()
	frameFailures.Add(ctx, 1, kindAttr(j.spec.Kind))
	j.logger.Error("frame capture failed", "frame", index, "error", err)
}

// fail moves the job to Failed with a message retained for status queries.
func (j *Job) fail(msg string) {
	now := time.Now()
	j.mu.Lock()
	j.state = StateFailed
	j.errMsg = msg
	j.completedAt = &now
	j.mu.Unlock()
	j.logger.Error("capture sequence failed", "error", msg)
}

// finish settles the terminal state after the loop exits.
func (j *Job) finish() {
	now := time.Now()

	j.mu.Lock()
	if j.state == StateRunning || j.state == StatePaused {
		j.state = StateCompleted
	}
	if j.completedAt == nil {
		j.completedAt = &now
	}
	completed := j.state == StateCompleted
	succeeded, failed := j.succeeded, j.failed
	j.mu.Unlock()

	if completed {
		j.logger.Info("capture sequence completed", "successful", succeeded, "failed", failed)
		if err := j.writeSummary(); err != nil {
			j.logger.Warn("failed to write sequence summary", "error", err)
		}
	}
}

// sequenceSummary is the artifact persisted next to the captured frames on
// natural completion.
type sequenceSummary struct {
	JobID         string   `json:"job_id"`
	Kind          string   `json:"kind"`
	TotalFrames   int      `json:"total_frames"`
	Succeeded     int      `json:"successful_frames"`
	Failed        int      `json:"failed_frames"`
	CapturedFiles []string `json:"captured_files"`
	Settings      struct {
		ExposureTime string `json:"exposure_time,omitempty"`
		ISO          string `json:"iso,omitempty"`
		TargetADU    int    `json:"target_adu,omitempty"`
	} `json:"settings"`
	Timing struct {
		CreatedAt   time.Time  `json:"created_at"`
		StartedAt   *time.Time `json:"started_at"`
		CompletedAt *time.Time `json:"completed_at"`
		Interval    string     `json:"interval"`
	} `json:"timing"`
	AverageADU *float64 `json:"average_adu,omitempty"`
	SessionID  string   `json:"session_id,omitempty"`
}

func (j *Job) writeSummary() error {
	j.mu.Lock()
	summary := sequenceSummary{
		JobID:         j.id,
		Kind:          string(j.spec.Kind),
		TotalFrames:   j.spec.FrameCount,
		Succeeded:     j.succeeded,
		Failed:        j.failed,
		CapturedFiles: append([]string(nil), j.files...),
		SessionID:     j.spec.SessionID,
	}
	summary.Settings.ExposureTime = j.spec.ExposureTime
	summary.Settings.ISO = j.spec.ISO
	summary.Settings.TargetADU = j.spec.TargetADU
	summary.Timing.CreatedAt = j.createdAt
	summary.Timing.StartedAt = j.startedAt
	summary.Timing.CompletedAt = j.completedAt
	summary.Timing.Interval = j.spec.Interval.String()
	if j.aduCount > 0 {
		avg := j.aduSum / float64(j.aduCount)
		summary.AverageADU = &avg
	}
	j.mu.Unlock()

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(j.outputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(j.outputDir, fmt.Sprintf("capture_summary_%s.json", j.id))
	return os.WriteFile(path, data, 0o644)
}

func (j *Job) temperatureSnapshot() *float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.temperature
}
