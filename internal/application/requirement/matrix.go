package requirement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
	"github.com/reqtrace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrExportUnavailable is returned when no PDF renderer is configured
var ErrExportUnavailable = shared.NewDomainError("EXPORT_UNAVAILABLE", "Matrix export is not enabled on this server")

// MatrixRenderer turns a traceability matrix into a printable document
type MatrixRenderer interface {
	RenderMatrixPDF(ctx context.Context, m *MatrixResponse) ([]byte, error)
}

// BuildMatrix joins every requirement of the project to its stakeholders,
// tasks and meetings, oldest requirement first
func (s *Service) BuildMatrix(ctx context.Context, principalID string, projectID uuid.UUID) (*MatrixResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "build_matrix",
		telemetry.SpanAttrPrincipalID, principalID,
		telemetry.SpanAttrProjectID, projectID.String(),
	)
	defer span.End()
	log := []zap.Field{zap.String("principal_id", principalID), zap.String("project_id", projectID.String())}

	p, caps, err := s.access.ResolveProject(ctx, principalID, projectID)
	if err != nil {
		return nil, s.fail(span, "Build matrix failed", err, log...)
	}
	if !caps.CanView() {
		return nil, s.fail(span, "Build matrix rejected", forbidden("You don't have access to this project"), log...)
	}

	details, err := s.queries.ListForMatrix(ctx, projectID)
	if err != nil {
		return nil, s.fail(span, "Build matrix failed", err, log...)
	}

	resp := &MatrixResponse{
		Project:     MatrixProject{ID: p.ID, Name: p.Name},
		Matrix:      make([]MatrixRow, 0, len(details)),
		GeneratedAt: time.Now().UTC(),
	}
	for i := range details {
		resp.Matrix = append(resp.Matrix, ToMatrixRow(&details[i]))
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrResultCount, len(resp.Matrix))
	return resp, nil
}

// ExportMatrixPDF renders the matrix to PDF. It returns the document and a
// suggested file name.
func (s *Service) ExportMatrixPDF(ctx context.Context, principalID string, projectID uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", ErrExportUnavailable
	}

	matrix, err := s.BuildMatrix(ctx, principalID, projectID)
	if err != nil {
		return nil, "", err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "requirement", "export_matrix_pdf",
		telemetry.SpanAttrProjectID, projectID.String(),
	)
	defer span.End()

	start := time.Now()
	pdf, err := s.renderer.RenderMatrixPDF(ctx, matrix)
	s.metrics.RecordExport(ctx, time.Since(start), err)
	if err != nil {
		return nil, "", s.fail(span, "Matrix export failed", err, zap.String("project_id", projectID.String()))
	}

	s.logger.Info("Matrix exported",
		zap.String("project_id", projectID.String()),
		zap.Int("rows", len(matrix.Matrix)),
		zap.Int("bytes", len(pdf)),
	)
	return pdf, fmt.Sprintf("traceability-matrix-%s.pdf", matrix.GeneratedAt.Format("20060102-150405")), nil
}
