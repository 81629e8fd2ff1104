package printing

import (
	"context"
	"time"
)

// Margins in millimeters
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins are used when a request leaves Margins zero
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 10, Bottom: 12, Left: 10}
}

// A4 paper in millimeters
const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// RenderRequest is an HTML document to print on A4 paper
type RenderRequest struct {
	HTML      string
	Title     string
	Landscape bool
	Margins   Margins
	// FooterHTML is a Chrome footer template; it may use the pageNumber
	// and totalPages classes
	FooterHTML string
	// Timeout overrides the renderer default
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer converts HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeInvalidHTML    = "INVALID_HTML"
	ErrCodeTemplateFailed = "TEMPLATE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// estimatePageCount counts page objects in the PDF; 1 if none are found
func estimatePageCount(pdf []byte) int {
	count := 0
	marker := []byte("/Type /Page")
	for i := 0; i+len(marker) <= len(pdf); i++ {
		if string(pdf[i:i+len(marker)]) != string(marker) {
			continue
		}
		// skip "/Type /Pages" tree nodes
		next := i + len(marker)
		if next < len(pdf) && pdf[next] == 's' {
			continue
		}
		count++
	}
	if count == 0 {
		return 1
	}
	return count
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}
