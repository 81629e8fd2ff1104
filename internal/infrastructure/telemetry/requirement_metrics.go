package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// RequirementMetrics records requirement lifecycle activity. A nil
// *RequirementMetrics is valid and records nothing.
type RequirementMetrics struct {
	created        *Counter
	changed        *Counter
	deleted        *Counter
	conflicts      *Counter
	taskLinks      *Counter
	comments       *Counter
	exportDuration *Histogram
}

// NewRequirementMetrics registers the requirement instruments on meter
func NewRequirementMetrics(meter metric.Meter) (*RequirementMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &RequirementMetrics{}
	var err error

	if m.created, err = NewCounter(meter, "reqtrace_requirements_created_total",
		"Requirements created", "{requirements}"); err != nil {
		return nil, err
	}
	if m.changed, err = NewCounter(meter, "reqtrace_requirement_changes_total",
		"Recorded requirement changes by history action", "{changes}"); err != nil {
		return nil, err
	}
	if m.deleted, err = NewCounter(meter, "reqtrace_requirements_deleted_total",
		"Requirements deleted", "{requirements}"); err != nil {
		return nil, err
	}
	if m.conflicts, err = NewCounter(meter, "reqtrace_requirement_version_conflicts_total",
		"Updates rejected because the stored version moved", "{conflicts}"); err != nil {
		return nil, err
	}
	if m.taskLinks, err = NewCounter(meter, "reqtrace_requirement_task_links_total",
		"Task links created or removed", "{links}"); err != nil {
		return nil, err
	}
	if m.comments, err = NewCounter(meter, "reqtrace_requirement_comments_total",
		"Comments added to requirements", "{comments}"); err != nil {
		return nil, err
	}
	if m.exportDuration, err = NewHistogram(meter, "reqtrace_matrix_export_duration_seconds",
		"Time spent rendering traceability matrix PDFs", "s", ExportDurationBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordCreated counts a created requirement
func (m *RequirementMetrics) RecordCreated(ctx context.Context, projectID string) {
	if m == nil {
		return
	}
	m.created.Inc(ctx, AttrProjectID.String(projectID))
}

// RecordChange counts a history row by action kind
func (m *RequirementMetrics) RecordChange(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.changed.Inc(ctx, AttrAction.String(action))
}

// RecordDeleted counts a deleted requirement
func (m *RequirementMetrics) RecordDeleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.deleted.Inc(ctx)
}

// RecordVersionConflict counts a lost optimistic-lock race
func (m *RequirementMetrics) RecordVersionConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.conflicts.Inc(ctx)
}

// RecordTaskLink counts link ("linked") and unlink ("unlinked") operations
func (m *RequirementMetrics) RecordTaskLink(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.taskLinks.Inc(ctx, AttrAction.String(action))
}

// RecordComment counts an added comment
func (m *RequirementMetrics) RecordComment(ctx context.Context) {
	if m == nil {
		return
	}
	m.comments.Inc(ctx)
}

// RecordExport records how long a matrix export took and whether it succeeded
func (m *RequirementMetrics) RecordExport(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.exportDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}
