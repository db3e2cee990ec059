package kiosk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultPollInterval is how often the camera is polled.
const DefaultPollInterval = 20 * time.Millisecond

// Presenter shows kiosk output to the person at the station.
type Presenter interface {
	// ShowFrame displays the latest camera frame.
	ShowFrame(frame Frame)
	// ShowRegistrationFrame displays the latest frame buffered by an enrollment.
	ShowRegistrationFrame(frame Frame)
	// ShowCountdown replaces the countdown text; "" clears it.
	ShowCountdown(text string)
	// ShowMessage pops up a titled message.
	ShowMessage(title, message string)
	// RegistrationClosed dismisses the registration form.
	RegistrationClosed()
}

// State is the Controller's position in the capture workflow.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateRecognizing
	StatePersisting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateRecognizing:
		return "recognizing"
	case StatePersisting:
		return "persisting"
	default:
		return "unknown"
	}
}

// LoginResult describes a recorded attendance mark.
type LoginResult struct {
	Username  string
	Direction Direction
	Time      time.Time
	ClipPath  string
}

// Deps groups the collaborators of a Controller.
type Deps struct {
	Camera     Camera
	Faces      FaceEngine
	Archive    *Archive
	Ledger     *Ledger
	Direction  DirectionSource
	Verifier   *TimeVerifier
	Presenter  Presenter
	Scheduler  Scheduler
	Clock      Clock
	IDs        IDGenerator
	Logger     Logger
	Recorder   Recorder
	Replicator Replicator
}

// Options tunes Controller timing.
type Options struct {
	PollInterval   time.Duration
	EnrollDuration time.Duration
}

// Controller drives the kiosk: it polls the camera, runs login and
// enrollment captures, and records results. All methods must be called from
// the Scheduler's thread.
type Controller struct {
	Deps
	ctx            context.Context
	pollInterval   time.Duration
	enrollDuration time.Duration

	login  *CaptureSession
	enroll *CaptureSession

	state        State
	running      bool
	registration string
	countdownID  string
	recognizer   *Recognizer
}

// NewController creates an idle Controller. Nil Recorder and Replicator are
// replaced with no-op versions, a nil Verifier skips the clock check and a nil
// Direction reads the ledger.
func NewController(deps Deps, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.EnrollDuration <= 0 {
		opts.EnrollDuration = DefaultEnrollDuration
	}
	if deps.Recorder == nil {
		deps.Recorder = NopRecorder{}
	}
	if deps.Replicator == nil {
		deps.Replicator = NopReplicator{}
	}
	if deps.Verifier == nil {
		deps.Verifier = NewTimeVerifier(nil, deps.Clock, 0, deps.Logger)
	}
	if deps.Direction == nil {
		deps.Direction = NewLedgerDirection(deps.Ledger)
	}

	return &Controller{
		Deps:           deps,
		ctx:            context.Background(),
		pollInterval:   opts.PollInterval,
		enrollDuration: opts.EnrollDuration,
		login:          NewCaptureSession(deps.Faces, deps.Clock, deps.Logger, opts.EnrollDuration),
		enroll:         NewCaptureSession(deps.Faces, deps.Clock, deps.Logger, opts.EnrollDuration),
		recognizer:     NewRecognizer(deps.Faces, deps.Archive.Store(), deps.Logger),
	}
}

// Start bootstraps this month's ledger and begins polling the camera.
func (c *Controller) Start(ctx context.Context) {
	if c.running {
		return
	}
	c.ctx = ctx
	c.running = true

	if err := c.Ledger.Bootstrap(c.Clock.Now()); err != nil {
		c.Logger.Error("bootstrapping ledger failed", "error", err)
	}

	c.Logger.Info("kiosk started", "poll_interval", c.pollInterval.String())
	c.Scheduler.After(c.pollInterval, c.poll)
}

// Stop ends polling after the current tick and drops any capture in progress.
func (c *Controller) Stop() {
	c.running = false
	c.login.Discard()
	c.enroll.Discard()
	c.countdownID = ""
	c.state = StateIdle
	c.Logger.Info("kiosk stopped")
}

// State returns the current workflow state.
func (c *Controller) State() State { return c.state }

// Registration returns the username of the open registration form, if any.
func (c *Controller) Registration() (string, bool) {
	return c.registration, c.registration != ""
}

// Login verifies the local clock and starts a login capture, which ends on
// the first frame with a face.
func (c *Controller) Login() error {
	if c.capturing() {
		return ErrSessionActive
	}

	if err := c.Verifier.Verify(c.ctx); err != nil {
		if errors.Is(err, ErrTimeDriftExceeded) {
			c.Presenter.ShowMessage("TIME ERROR", "TIME IS NOT UPDATED. PLEASE UPDATE TIME.")
		}
		return err
	}

	if err := c.login.Start(c.IDs.New(), ModeLogin); err != nil {
		return err
	}
	c.state = StateCapturing
	c.Presenter.ShowCountdown("")
	return nil
}

// RegisterNewUser opens a registration form for username.
func (c *Controller) RegisterNewUser(username string) error {
	if c.capturing() {
		return ErrSessionActive
	}
	name, err := c.validateUsername(username)
	if err != nil {
		return err
	}
	c.registration = name
	c.Logger.Info("registration opened", "username", name)
	return nil
}

// AcceptRegistration starts the enrollment capture for the open registration
// along with a visible countdown.
func (c *Controller) AcceptRegistration() error {
	if c.registration == "" {
		return ErrNoRegistration
	}
	if c.capturing() {
		return ErrSessionActive
	}

	id := c.IDs.New()
	if err := c.enroll.Start(id, ModeEnroll); err != nil {
		return err
	}
	c.state = StateCapturing
	c.countdownID = id
	c.countdown(id, int(c.enrollDuration/time.Second))
	return nil
}

// CancelRegistration drops an enrollment capture without saving it and
// closes the registration form.
func (c *Controller) CancelRegistration() {
	if c.enroll.Active() {
		c.enroll.Discard()
		c.state = StateIdle
	}
	c.countdownID = ""
	c.registration = ""
	c.Presenter.ShowCountdown("")
	c.Presenter.RegistrationClosed()
	c.Logger.Info("registration cancelled")
}

func (c *Controller) capturing() bool {
	return c.login.Active() || c.enroll.Active()
}

func (c *Controller) validateUsername(raw string) (string, error) {
	name, err := NormalizeUsername(raw)
	switch {
	case errors.Is(err, ErrEmptyUsername):
		c.Presenter.ShowMessage("ERROR", "Please enter a username.")
	case errors.Is(err, ErrInvalidUsername):
		c.Presenter.ShowMessage("ERROR", "Username cannot contain path separators.")
	}
	return name, err
}

// poll reads one frame, feeds the active session and reschedules itself.
func (c *Controller) poll() {
	if !c.running {
		return
	}
	defer c.Scheduler.After(c.pollInterval, c.poll)

	frame, ok, err := c.Camera.ReadFrame()
	if err != nil {
		c.Logger.Warn("reading camera frame failed", "error", err)
		return
	}
	if !ok {
		return
	}

	switch {
	case c.login.Active():
		if c.login.OnFrame(frame) {
			c.Recorder.FrameCaptured(ModeLogin)
		}
		if c.login.ShouldTerminate(c.ctx) {
			c.login.Stop()
			c.completeLogin()
		}
	case c.enroll.Active():
		if c.enroll.OnFrame(frame) {
			c.Recorder.FrameCaptured(ModeEnroll)
			c.Presenter.ShowRegistrationFrame(frame)
		}
		if c.enroll.ShouldTerminate(c.ctx) {
			c.enroll.Stop()
			c.completeRegistration()
		}
	}

	c.Presenter.ShowFrame(frame)
}

func (c *Controller) countdown(id string, seconds int) {
	if c.countdownID != id {
		return
	}
	if seconds > 0 {
		c.Presenter.ShowCountdown(fmt.Sprintf("Please stay here! Capture in: %d seconds", seconds))
		c.Scheduler.After(time.Second, func() { c.countdown(id, seconds-1) })
		return
	}
	c.Presenter.ShowCountdown("Capture complete!")
	c.countdownID = ""
}

func (c *Controller) completeLogin() {
	c.state = StateRecognizing
	defer func() { c.state = StateIdle }()

	result, err := c.recognize(c.login.Frames())
	switch {
	case err == nil:
		c.Recorder.LoginRecorded(result.Direction)
		c.Presenter.ShowMessage("LOGIN SUCCESSFUL", fmt.Sprintf("%s, YOUR %s IS %s",
			strings.ToUpper(result.Username), result.Direction, result.Time.Format("03:04 PM")))
	case errors.Is(err, ErrNoFrameCaptured):
		c.Presenter.ShowMessage("ERROR", "No video captured. Please try again.")
	case errors.Is(err, ErrUnknownIdentity):
		c.Recorder.AccessDenied()
		c.Presenter.ShowMessage("ACCESS DENIED", "UNKNOWN USER. PLEASE REGISTER NEW USER OR TRY AGAIN.")
	default:
		c.Logger.Error("login failed", "session", c.login.ID(), "error", err)
		c.Presenter.ShowMessage("ERROR", "Login failed. Please try again.")
	}
}

// recognize identifies the person in frames and records the attendance mark.
func (c *Controller) recognize(frames []Frame) (*LoginResult, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrameCaptured
	}

	started := c.Clock.Now()
	records, err := c.Archive.Enrollments()
	if err != nil {
		return nil, err
	}
	gallery, err := c.recognizer.BuildGallery(c.ctx, records)
	if err != nil {
		return nil, err
	}
	username, err := c.recognizer.Identify(c.ctx, frames, gallery)
	c.Recorder.RecognitionObserved(c.Clock.Now().Sub(started))
	if err != nil {
		c.Logger.Info("login rejected", "session", c.login.ID(), "frames", len(frames), "gallery", len(gallery), "error", err)
		return nil, err
	}

	now := c.Clock.Now()
	dir, err := c.Direction.Direction(username, now)
	if err != nil {
		return nil, fmt.Errorf("determining direction: %w", err)
	}

	clipPath, err := c.Archive.SaveEventClip(username, dir, frames, now)
	if err != nil {
		return nil, err
	}
	c.replicate("event", clipPath)

	ledgerPath, err := c.Ledger.RecordEvent(username, dir, now)
	if err != nil {
		return nil, err
	}
	c.replicate("ledger", ledgerPath)

	c.Logger.Info("login recorded", "session", c.login.ID(), "username", username, "direction", dir.String())
	return &LoginResult{Username: username, Direction: dir, Time: now, ClipPath: clipPath}, nil
}

func (c *Controller) completeRegistration() {
	c.state = StatePersisting
	defer func() { c.state = StateIdle }()

	name := c.registration
	path, err := c.Archive.SaveEnrollmentClip(c.ctx, name, c.enroll.Frames())
	switch {
	case err == nil:
		c.replicate("enrollment", path)
		c.Recorder.EnrollmentFinished("registered")
		c.registration = ""
		c.Presenter.ShowMessage("Information", "User was registered successfully!")
		c.Presenter.RegistrationClosed()
	case errors.Is(err, ErrNoFrameCaptured):
		c.Recorder.EnrollmentFinished("no_frames")
		c.Presenter.ShowMessage("ERROR", "No video captured. Please try again.")
	case errors.Is(err, ErrNoFaceDetected):
		c.Recorder.EnrollmentFinished("no_face")
		c.Presenter.ShowMessage("ERROR", "No face detected in the video. Please try again.")
	default:
		c.Recorder.EnrollmentFinished("error")
		c.Logger.Error("registration failed", "session", c.enroll.ID(), "username", name, "error", err)
		c.Presenter.ShowMessage("ERROR", "Registration failed. Please try again.")
	}
}

func (c *Controller) replicate(kind, path string) {
	if err := c.Replicator.Enqueue(kind, path); err != nil {
		c.Logger.Warn("queueing replication failed", "kind", kind, "path", path, "error", err)
	}
}
