package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Open parses raw upload bytes into a Document, validating PDF structure
// and resolving the page count. Corrupt or encrypted inputs return an
// UnreadableError.
func Open(name string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, &UnreadableError{Name: name, Err: fmt.Errorf("empty file")}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &UnreadableError{Name: name, Err: fmt.Errorf("failed to read PDF context: %w", err)}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &UnreadableError{Name: name, Err: fmt.Errorf("failed to resolve page count: %w", err)}
	}
	if ctx.PageCount == 0 {
		return nil, &UnreadableError{Name: name, Err: fmt.Errorf("document has no pages")}
	}

	return &Document{
		Name:   name,
		Data:   data,
		Pages:  ctx.PageCount,
		Source: SourceNone,
	}, nil
}
