package uiHandler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

//go:embed templates/index.html
var templatesFS embed.FS

const pollInterval = 1500

type pageData struct {
	Title      string
	APIBase    string
	IntervalMs int
}

type UIHandler struct {
	log  *logrus.Logger
	page []byte
}

// New renders the page once. apiBase is prefixed to /detect by the browser, so it is
// empty when the page and the API share an origin.
func New(log *logrus.Logger, apiBase string) (*UIHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pageData{
		Title:      "Live Drone Detection",
		APIBase:    strings.TrimRight(apiBase, "/"),
		IntervalMs: pollInterval,
	}); err != nil {
		return nil, fmt.Errorf("failed to render page template: %w", err)
	}

	return &UIHandler{
		log:  log,
		page: buf.Bytes(),
	}, nil
}

func (h *UIHandler) Start(srv fiber.Router) {
	srv.Get("/", h.Index)
}

func (h *UIHandler) Index(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.Send(h.page)
}
