package dashboard

import (
	"DroneDetect/internal/api/detection"
	detectionService "DroneDetect/internal/api/detection/service"
	"DroneDetect/pkg/capture"
	"DroneDetect/pkg/utils"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Snapshot is the result of the most recent capture cycle. Image is the annotated JPEG
// of the last frame that made it through detection; Err is the last cycle's failure.
type Snapshot struct {
	Image     []byte
	Summary   *detection.DetectResponse
	Err       string
	UpdatedAt time.Time
}

type Dashboard struct {
	log              *logrus.Logger
	camera           capture.ICamera
	detectionService detectionService.IDetectionService
	utils            utils.IUtils
	interval         time.Duration
	timeout          time.Duration

	running atomic.Bool

	mu       sync.RWMutex
	snapshot Snapshot
	page     []byte
}

func New(
	log *logrus.Logger,
	camera capture.ICamera,
	ds detectionService.IDetectionService,
	utils utils.IUtils,
	interval time.Duration,
	timeout time.Duration,
) (*Dashboard, error) {
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	page, err := renderPage(interval)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		log:              log,
		camera:           camera,
		detectionService: ds,
		utils:            utils,
		interval:         interval,
		timeout:          timeout,
		page:             page,
	}, nil
}

// Run captures a frame every interval while the dashboard is running, until ctx is done.
func (d *Dashboard) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.WithFields(logrus.Fields{
		"device":   d.camera.Device(),
		"interval": d.interval.String(),
	}).Info("Camera loop started")

	for {
		select {
		case <-ctx.Done():
			d.log.Info("Camera loop stopped")
			return
		case <-ticker.C:
			if !d.running.Load() {
				continue
			}
			if err := d.Tick(ctx); err != nil {
				d.log.WithFields(logrus.Fields{
					"device": d.camera.Device(),
					"error":  err.Error(),
				}).Warn("Camera cycle failed")
			}
		}
	}
}

// Tick runs one grab, detect, annotate cycle and stores the outcome.
func (d *Dashboard) Tick(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	img, summary, err := d.process(ctx)
	if err != nil {
		d.mu.Lock()
		d.snapshot.Err = err.Error()
		d.snapshot.UpdatedAt = time.Now()
		d.mu.Unlock()
		return err
	}

	d.mu.Lock()
	d.snapshot = Snapshot{
		Image:     img,
		Summary:   summary,
		UpdatedAt: time.Now(),
	}
	d.mu.Unlock()

	return nil
}

func (d *Dashboard) process(ctx context.Context) ([]byte, *detection.DetectResponse, error) {
	raw, err := d.camera.Grab(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to grab frame from camera: %w", err)
	}

	frame, err := d.utils.DecodeImage(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode camera frame: %w", err)
	}

	summary, detections, err := d.detectionService.DetectImage(ctx, frame)
	if err != nil {
		return nil, nil, err
	}

	img, err := d.detectionService.Annotate(frame, detections)
	if err != nil {
		return nil, nil, err
	}

	return img, summary, nil
}

func (d *Dashboard) Toggle() bool {
	for {
		current := d.running.Load()
		if d.running.CompareAndSwap(current, !current) {
			d.log.WithField("running", !current).Info("Camera toggled")
			return !current
		}
	}
}

func (d *Dashboard) SetRunning(running bool) {
	if d.running.Swap(running) != running {
		d.log.WithField("running", running).Info("Camera toggled")
	}
}

func (d *Dashboard) Running() bool {
	return d.running.Load()
}

// Latest returns a copy of the current snapshot.
func (d *Dashboard) Latest() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}
