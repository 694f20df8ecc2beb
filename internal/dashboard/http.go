package dashboard

import (
	"DroneDetect/internal/api/detection"
	"DroneDetect/pkg/handlerUtil"
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed templates/index.html
var templatesFS embed.FS

type LabelsResponse struct {
	Running   bool                      `json:"running"`
	Summary   *detection.DetectResponse `json:"summary,omitempty"`
	Labels    []string                  `json:"labels"`
	UpdatedAt *time.Time                `json:"updated_at,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// ToggleRequest sets the capture state. An empty body flips it.
type ToggleRequest struct {
	Running *bool `json:"running"`
}

type ToggleResponse struct {
	Running bool `json:"running"`
}

func renderPage(interval time.Duration) ([]byte, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]interface{}{
		"Title":      "Live Drone & Object Detection",
		"IntervalMs": interval.Milliseconds(),
	}); err != nil {
		return nil, fmt.Errorf("failed to render dashboard template: %w", err)
	}

	return buf.Bytes(), nil
}

func (d *Dashboard) Start(srv fiber.Router) {
	srv.Get("/", d.Index)
	srv.Get("/snapshot.jpg", d.SnapshotImage)
	srv.Get("/labels", d.Labels)
	srv.Post("/toggle", d.ToggleCapture)
}

func (d *Dashboard) Index(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.Send(d.page)
}

func (d *Dashboard) SnapshotImage(ctx *fiber.Ctx) error {
	snap := d.Latest()
	if len(snap.Image) == 0 {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(handlerUtil.ErrorResponse{
			Error: "No frame captured yet.",
		})
	}

	ctx.Set(fiber.HeaderContentType, "image/jpeg")
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	return ctx.Send(snap.Image)
}

func (d *Dashboard) Labels(ctx *fiber.Ctx) error {
	snap := d.Latest()

	resp := LabelsResponse{
		Running: d.Running(),
		Summary: snap.Summary,
		Labels:  formatLabels(snap.Summary),
		Error:   snap.Err,
	}
	if !snap.UpdatedAt.IsZero() {
		resp.UpdatedAt = &snap.UpdatedAt
	}

	return ctx.JSON(resp)
}

func (d *Dashboard) ToggleCapture(ctx *fiber.Ctx) error {
	if len(ctx.Body()) == 0 {
		return ctx.JSON(ToggleResponse{Running: d.Toggle()})
	}

	var req ToggleRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil || req.Running == nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(handlerUtil.ErrorResponse{
			Error: "Expected a JSON body with a boolean running field.",
		})
	}

	d.SetRunning(*req.Running)
	return ctx.JSON(ToggleResponse{Running: d.Running()})
}

func formatLabels(summary *detection.DetectResponse) []string {
	labels := []string{}
	if summary == nil {
		return labels
	}
	for _, l := range summary.DetectedLabels {
		labels = append(labels, fmt.Sprintf("%s (%.2f%%)", l.Label, l.Confidence))
	}
	return labels
}
