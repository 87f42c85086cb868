package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/cmespinar/docrename/internal/extract"
	"github.com/cmespinar/docrename/internal/highlight"
	"github.com/cmespinar/docrename/internal/session"
)

// ErrPageOutOfRange marks a preview request for a page the document does
// not have. It is a caller mistake, not a server failure.
var ErrPageOutOfRange = errors.New("page out of range")

// PreviewPage is one rendered page with its highlight overlay.
type PreviewPage struct {
	Page       int                   `json:"page"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Image      string                `json:"image"`
	Highlights []highlight.Highlight `json:"highlights"`
}

// PreviewResult is the preview response for one page request.
type PreviewResult struct {
	Success    bool        `json:"success"`
	Page       PreviewPage `json:"page"`
	TotalPages int         `json:"total_pages"`
}

// Preview renders the requested page (cached per document/page/DPI within
// the session) and locates the caller's current field values on it. The
// raster depends only on (doc, page, dpi); highlights are recomputed for
// every request because the caller may have edited field values.
func (s *Service) Preview(ctx context.Context, sessionID string, docIndex, pageIndex, dpi int, fields map[extract.FieldKind]string) (*PreviewResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("session store not configured")
	}
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	doc, err := sess.Document(docIndex)
	if err != nil {
		return nil, err
	}

	if dpi <= 0 {
		dpi = s.previewDPI()
	}
	totalPages := doc.Pages
	if max := s.previewPages(); totalPages > max {
		totalPages = max
	}
	if pageIndex < 0 || pageIndex >= totalPages {
		return nil, fmt.Errorf("%w: page %d (0..%d)", ErrPageOutOfRange, pageIndex, totalPages-1)
	}

	key := session.RasterKey{Doc: docIndex, Page: pageIndex, DPI: dpi}
	page, ok := sess.Raster(key)
	if !ok {
		rendered, err := s.renderer.Render(ctx, doc, pageIndex, dpi)
		if err != nil {
			return nil, fmt.Errorf("rendering page %d of %s: %w", pageIndex, doc.Name, err)
		}
		page = sess.PutRaster(key, rendered)
	}

	highlights := highlight.FindAll(page.Words, fields, page.Width, page.Height)

	return &PreviewResult{
		Success: true,
		Page: PreviewPage{
			Page:       pageIndex,
			Width:      page.Width,
			Height:     page.Height,
			Image:      dataURL(page.JPEG),
			Highlights: highlights,
		},
		TotalPages: totalPages,
	}, nil
}

func dataURL(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}

func (s *Service) previewDPI() int {
	if s.cfg != nil && s.cfg.PreviewDPI > 0 {
		return s.cfg.PreviewDPI
	}
	return 150
}

func (s *Service) previewPages() int {
	if s.cfg != nil && s.cfg.PreviewPages > 0 {
		return s.cfg.PreviewPages
	}
	return 5
}
