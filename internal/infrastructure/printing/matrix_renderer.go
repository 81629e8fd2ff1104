package printing

import (
	"bytes"
	"context"

	appreq "github.com/reqtrace/backend/internal/application/requirement"
	"go.uber.org/zap"
)

// MatrixPDFRenderer prints a traceability matrix as a landscape A4 table
type MatrixPDFRenderer struct {
	pdf    PDFRenderer
	logger *zap.Logger
}

// NewMatrixPDFRenderer creates a renderer that prints through pdf
func NewMatrixPDFRenderer(pdf PDFRenderer, logger *zap.Logger) *MatrixPDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatrixPDFRenderer{pdf: pdf, logger: logger.Named("printing")}
}

// RenderMatrixHTML fills the matrix page template
func (r *MatrixPDFRenderer) RenderMatrixHTML(m *appreq.MatrixResponse) (string, error) {
	var buf bytes.Buffer
	if err := matrixTemplate.Execute(&buf, m); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to render matrix template", err)
	}
	return buf.String(), nil
}

// RenderMatrixPDF implements requirement.MatrixRenderer
func (r *MatrixPDFRenderer) RenderMatrixPDF(ctx context.Context, m *appreq.MatrixResponse) ([]byte, error) {
	html, err := r.RenderMatrixHTML(m)
	if err != nil {
		return nil, err
	}

	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      "Traceability matrix - " + m.Project.Name,
		Landscape:  true,
		FooterHTML: matrixFooter,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Traceability matrix printed",
		zap.String("project_id", m.Project.ID.String()),
		zap.Int("rows", len(m.Matrix)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result.PDFData, nil
}

// Close releases the underlying PDF renderer
func (r *MatrixPDFRenderer) Close() error {
	return r.pdf.Close()
}

var _ appreq.MatrixRenderer = (*MatrixPDFRenderer)(nil)
