package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"deckwatch/pkg/credentials"
)

// Artifacts are the files written by Capture.
type Artifacts struct {
	Screenshot string `json:"screenshot,omitempty"`
	HTML       string `json:"html,omitempty"`
}

// Capture writes a full-page PNG and the serialized document to dir as
// <prefix>_<unix-ms>.png/.html. Write failures wrap credentials.ErrPersistence.
func (t *Tab) Capture(ctx context.Context, dir, prefix string) (Artifacts, error) {
	var a Artifacts
	if err := os.MkdirAll(dir, 0755); err != nil {
		return a, fmt.Errorf("%w: create debug dir: %v", credentials.ErrPersistence, err)
	}
	base := filepath.Join(dir, fmt.Sprintf("%s_%d", prefix, time.Now().UnixMilli()))

	var png []byte
	if err := t.run(ctx, t.cfg.NavTimeout, chromedp.FullScreenshot(&png, 100)); err != nil {
		t.logger.Warn("Screenshot failed", zap.Error(err))
	} else if err := os.WriteFile(base+".png", png, 0644); err != nil {
		return a, fmt.Errorf("%w: write screenshot: %v", credentials.ErrPersistence, err)
	} else {
		a.Screenshot = base + ".png"
	}

	html, err := t.HTML(ctx)
	if err != nil {
		t.logger.Warn("HTML snapshot failed", zap.Error(err))
	} else if err := os.WriteFile(base+".html", []byte(html), 0644); err != nil {
		return a, fmt.Errorf("%w: write html: %v", credentials.ErrPersistence, err)
	} else {
		a.HTML = base + ".html"
	}

	t.logger.Info("Debug artifacts written",
		zap.String("screenshot", a.Screenshot),
		zap.String("html", a.HTML))
	return a, nil
}
