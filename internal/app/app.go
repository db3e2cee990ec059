package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"kiosk-go/internal/archive"
	"kiosk-go/internal/camera"
	"kiosk-go/internal/config"
	"kiosk-go/internal/encryption"
	"kiosk-go/internal/faceclient"
	"kiosk-go/internal/kiosk"
	"kiosk-go/internal/ledger"
	"kiosk-go/internal/metrics"
	"kiosk-go/internal/staging"
	"kiosk-go/internal/timesource"
	"kiosk-go/internal/vault"
	"kiosk-go/internal/video"
)

// Message is the last popup shown by a one-shot login or registration.
type Message struct {
	Title string
	Text  string
}

// Succeeded reports whether the popup announces a recorded login or a registration.
func (m Message) Succeeded() bool {
	return m.Title == "LOGIN SUCCESSFUL" || m.Title == "Information"
}

// KioskApp is the application layer between the CLI and the kiosk core.
// It constructs all dependencies from config and exposes high-level
// operations. The camera is opened only by the operations that capture.
// The caller must call Close when done.
type KioskApp struct {
	cfg       *config.Config
	op        *Operation
	logger    kiosk.Logger
	logFile   *os.File
	clock     kiosk.Clock
	ids       kiosk.IDGenerator
	faces     kiosk.FaceEngine
	format    kiosk.ClipFormat
	archive   *kiosk.Archive
	ledger    *kiosk.Ledger
	recorder  *metrics.Recorder
	staging   kiosk.StagingArea // nil unless replication is enabled
	vault     kiosk.Vault
	encryptor kiosk.Encryptor
}

// Options tweaks NewKioskApp.
type Options struct {
	// Debug enables debug-level logging.
	Debug bool
}

// NewKioskApp creates a fully wired KioskApp from the given config.
// operation identifies the CLI command being run (e.g. "Run", "Sync").
func NewKioskApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*KioskApp, error) {
	clock := kiosk.RealClock{}
	op := NewOperation(operation, clock.Now())

	slogger, logFile, err := newLogger(cfg.LogDir, op.ID, opts.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &KioskApp{
		cfg:      cfg,
		op:       op,
		logger:   logger,
		logFile:  logFile,
		clock:    clock,
		ids:      kiosk.UUIDGenerator{},
		recorder: metrics.NewRecorder(cfg.StationID),
	}
	if err := a.wire(ctx); err != nil {
		logFile.Close()
		return nil, err
	}

	logger.Info("operation started", "operation", operation, "station", cfg.StationID)
	return a, nil
}

// clipFormat returns the format of every persisted clip. Frame rate and
// geometry are fixed; config may only restate them. The codec tag may be changed.
func clipFormat(cfg config.VideoConfig) (kiosk.ClipFormat, error) {
	format := kiosk.DefaultClipFormat
	if cfg.FPS != 0 && cfg.FPS != format.FPS {
		return kiosk.ClipFormat{}, fmt.Errorf("video fps must be %v, got %v", format.FPS, cfg.FPS)
	}
	if (cfg.Width != 0 && cfg.Width != format.Width) || (cfg.Height != 0 && cfg.Height != format.Height) {
		return kiosk.ClipFormat{}, fmt.Errorf("video size must be %dx%d, got %dx%d",
			format.Width, format.Height, cfg.Width, cfg.Height)
	}
	if cfg.CodecTag != "" {
		format.CodecTag = cfg.CodecTag
	}
	return format, nil
}

func (a *KioskApp) wire(ctx context.Context) error {
	faces, err := faceclient.NewFaceEngineFromConfig(a.cfg.Face)
	if err != nil {
		return fmt.Errorf("creating face engine: %w", err)
	}
	a.faces = faces

	format, err := clipFormat(a.cfg.Video)
	if err != nil {
		return fmt.Errorf("invalid video config: %w", err)
	}
	a.format = format
	codec := video.NewFFmpegCodec(a.cfg.Video.FFmpegPath, format)
	clips, err := archive.NewClipStoreFromConfig(a.cfg.Archive, a.cfg.DBDir, codec)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	a.archive = kiosk.NewArchive(clips, faces, format, a.logger)

	sheets, err := ledger.NewLedgerStoreFromConfig(a.cfg.Ledger, a.cfg.DBDir)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	a.ledger = kiosk.NewLedger(sheets, a.logger)

	if !a.cfg.Replication.Enabled {
		return nil
	}

	sa, err := staging.NewStagingAreaFromConfig(a.cfg.Replication.Staging, a.cfg.DBDir, a.clock, a.ids)
	if err != nil {
		return fmt.Errorf("creating staging area: %w", err)
	}
	v, err := vault.NewVaultFromConfig(ctx, a.cfg.Replication.Vault)
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}
	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Replication.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	a.staging, a.vault, a.encryptor = sa, v, enc
	return nil
}

// Recorder exposes the metrics recorder.
func (a *KioskApp) Recorder() *metrics.Recorder { return a.recorder }

// newController opens the camera and builds a Controller scheduled on loop.
// The returned close function releases the camera.
func (a *KioskApp) newController(presenter kiosk.Presenter, loop kiosk.Scheduler) (*kiosk.Controller, func() error, error) {
	cam, err := camera.NewCameraFromConfig(a.cfg.Camera, a.cfg.Video.FFmpegPath, a.format)
	if err != nil {
		return nil, nil, fmt.Errorf("opening camera: %w", err)
	}

	authority, err := timesource.NewTimeAuthorityFromConfig(a.cfg.Time)
	if err != nil {
		cam.Close()
		return nil, nil, fmt.Errorf("creating time authority: %w", err)
	}

	var direction kiosk.DirectionSource
	switch a.cfg.Ledger.DirectionSource {
	case "archive", "":
		direction = kiosk.NewArchiveDirection(a.archive)
	case "ledger":
		direction = kiosk.NewLedgerDirection(a.ledger)
	default:
		cam.Close()
		return nil, nil, fmt.Errorf("unknown direction source: %s", a.cfg.Ledger.DirectionSource)
	}

	var replicator kiosk.Replicator = kiosk.NopReplicator{}
	if a.staging != nil {
		replicator = kiosk.NewStagingReplicator(a.cfg.DBDir, a.staging)
	}

	ctrl := kiosk.NewController(kiosk.Deps{
		Camera:     cam,
		Faces:      a.faces,
		Archive:    a.archive,
		Ledger:     a.ledger,
		Direction:  direction,
		Verifier:   kiosk.NewTimeVerifier(authority, a.clock, a.cfg.Time.MaxDrift.Duration, a.logger),
		Presenter:  presenter,
		Scheduler:  loop,
		Clock:      a.clock,
		IDs:        a.ids,
		Logger:     a.logger,
		Recorder:   a.recorder,
		Replicator: replicator,
	}, kiosk.Options{
		PollInterval:   a.cfg.Camera.PollInterval.Duration,
		EnrollDuration: a.cfg.Capture.EnrollDuration.Duration,
	})
	return ctrl, cam.Close, nil
}

// serveMetrics starts the metrics listener when an address is configured.
func (a *KioskApp) serveMetrics(ctx context.Context) {
	if a.cfg.Metrics.Addr == "" {
		return
	}
	go func() {
		a.logger.Info("metrics listening", "addr", a.cfg.Metrics.Addr)
		if err := a.recorder.Serve(ctx, a.cfg.Metrics.Addr); err != nil {
			a.logger.Error("metrics listener failed", "error", err)
		}
	}()
}

// Run starts the interactive kiosk. Console commands are read from in and
// output is written to out until in is exhausted, the operator quits or ctx
// is cancelled. prompt is printed before each command when non-empty.
func (a *KioskApp) Run(ctx context.Context, in io.Reader, out io.Writer, prompt string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := NewEventLoop()
	presenter := NewConsolePresenter(out)
	ctrl, closeCamera, err := a.newController(presenter, loop)
	if err != nil {
		a.op.Fail()
		return err
	}
	defer closeCamera()

	a.serveMetrics(ctx)

	c := &console{ctrl: ctrl, presenter: presenter, out: out, stop: cancel}
	loop.Post(func() { ctrl.Start(ctx) })
	go func() {
		readCommands(in, out, prompt, loop, c)
		cancel()
	}()

	fmt.Fprintln(out, "kiosk ready; type help for commands")
	loop.Run(ctx)
	ctrl.Stop()
	return nil
}

// Login runs a single login capture and returns the resulting popup.
func (a *KioskApp) Login(ctx context.Context, out io.Writer) (Message, error) {
	return a.runOnce(ctx, out, func(c *kiosk.Controller) error {
		return c.Login()
	})
}

// Register enrolls username with a single capture and returns the resulting popup.
func (a *KioskApp) Register(ctx context.Context, out io.Writer, username string) (Message, error) {
	return a.runOnce(ctx, out, func(c *kiosk.Controller) error {
		if err := c.RegisterNewUser(username); err != nil {
			return err
		}
		return c.AcceptRegistration()
	})
}

// runOnce starts a controller, performs action on the event loop and stops
// at the first popup.
func (a *KioskApp) runOnce(ctx context.Context, out io.Writer, action func(*kiosk.Controller) error) (Message, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := NewEventLoop()
	presenter := NewConsolePresenter(out)
	var result Message
	presenter.OnMessage = func(title, text string) {
		result = Message{Title: title, Text: text}
		cancel()
	}

	ctrl, closeCamera, err := a.newController(presenter, loop)
	if err != nil {
		a.op.Fail()
		return Message{}, err
	}
	defer closeCamera()

	var actionErr error
	loop.Post(func() {
		ctrl.Start(ctx)
		if err := action(ctrl); err != nil {
			actionErr = err
			cancel()
		}
	})
	loop.Run(ctx)
	ctrl.Stop()

	switch {
	case actionErr != nil:
		a.op.Fail()
		return result, actionErr
	case result.Title == "":
		a.op.Fail()
		return result, fmt.Errorf("capture did not finish: %w", context.Cause(ctx))
	case !result.Succeeded():
		a.op.Fail()
	}
	return result, nil
}

// Users returns the enrolled usernames in name order.
func (a *KioskApp) Users() ([]string, error) {
	records, err := a.archive.Enrollments()
	if err != nil {
		a.op.Fail()
		return nil, err
	}
	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Username
	}
	return names, nil
}

// Report returns the ledger rows of a month.
func (a *KioskApp) Report(year int, month time.Month) ([]kiosk.LedgerRow, error) {
	rows, err := a.ledger.Rows(year, month)
	if err != nil {
		a.op.Fail()
		return nil, err
	}
	return rows, nil
}

// Now returns the kiosk clock's current time.
func (a *KioskApp) Now() time.Time { return a.clock.Now() }

func (a *KioskApp) syncService() (*kiosk.SyncService, error) {
	if a.staging == nil {
		return nil, fmt.Errorf("replication is not enabled")
	}
	return kiosk.NewSyncService(a.cfg.StationID, a.staging, a.vault, a.encryptor, a.logger), nil
}

// QueueStatus reports the number and total size of artifacts awaiting sync.
func (a *KioskApp) QueueStatus() (int, int64, error) {
	if a.staging == nil {
		return 0, 0, fmt.Errorf("replication is not enabled")
	}
	count, err := a.staging.Count()
	if err != nil {
		return 0, 0, fmt.Errorf("counting staged artifacts: %w", err)
	}
	size, err := a.staging.Size()
	if err != nil {
		return 0, 0, fmt.Errorf("measuring staging area: %w", err)
	}
	return count, size, nil
}

// Sync ships every staged artifact to the vault and returns how many were shipped.
func (a *KioskApp) Sync(ctx context.Context) (int, error) {
	svc, err := a.syncService()
	if err != nil {
		a.op.Fail()
		return 0, err
	}
	if err := a.vault.ValidateSetup(); err != nil {
		a.op.Fail()
		return 0, fmt.Errorf("vault not ready: %w", err)
	}
	n, err := svc.Sync(ctx)
	if err != nil {
		a.op.Fail()
	}
	return n, err
}

// SetupKeys generates the replica encryption keys, protected by passphrase.
func (a *KioskApp) SetupKeys(passphrase string) error {
	if a.encryptor == nil {
		a.op.Fail()
		return fmt.Errorf("replica encryption is not enabled")
	}
	if err := a.encryptor.Setup(passphrase); err != nil {
		a.op.Fail()
		return err
	}
	a.logger.Info("encryption keys created")
	return nil
}

// Restore writes the replica of relPath (relative to db_dir) to w. The
// passphrase unlocks the private key when replicas are encrypted.
func (a *KioskApp) Restore(relPath, passphrase string, w io.Writer) error {
	svc, err := a.syncService()
	if err != nil {
		a.op.Fail()
		return err
	}

	var dec kiosk.DecryptionContext
	if a.encryptor != nil {
		if dec, err = a.encryptor.Unlock(passphrase); err != nil {
			a.op.Fail()
			return fmt.Errorf("unlocking private key: %w", err)
		}
	}
	if err := svc.Restore(relPath, dec, w); err != nil {
		a.op.Fail()
		return fmt.Errorf("restoring %s: %w", relPath, err)
	}
	a.logger.Info("replica restored", "path", relPath)
	return nil
}

// EncryptionEnabled reports whether replicas are encrypted.
func (a *KioskApp) EncryptionEnabled() bool { return a.encryptor != nil }

// Close finishes the operation log and releases resources.
func (a *KioskApp) Close() error {
	a.logger.Info("operation finished", "operation", a.op.Name, "status", a.op.Status,
		"elapsed", a.op.Elapsed(a.clock.Now()).String())
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
