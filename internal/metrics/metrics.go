package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics

	usersRegistered      metric.Int64Counter
	logins               metric.Int64Counter
	coursesListViewed    metric.Int64Counter
	coursesViewed        metric.Int64Counter
	assignmentsSubmitted metric.Int64Counter
	adminActions         metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.Messaging, err = NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.usersRegistered, err = meter.Int64Counter(
		"lms.users.registered",
		metric.WithDescription("Total number of users registered"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	m.logins, err = meter.Int64Counter(
		"lms.logins",
		metric.WithDescription("Login attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesListViewed, err = meter.Int64Counter(
		"lms.courses.list_viewed",
		metric.WithDescription("Total number of times the course dashboard was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesViewed, err = meter.Int64Counter(
		"lms.courses.viewed",
		metric.WithDescription("Total number of course detail views"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.assignmentsSubmitted, err = meter.Int64Counter(
		"lms.assignments.submitted",
		metric.WithDescription("Total number of accepted assignment submissions"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}

	m.adminActions, err = meter.Int64Counter(
		"lms.admin.actions",
		metric.WithDescription("Admin mutations by action"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordRegistration(ctx context.Context) {
	if m != nil && m.usersRegistered != nil {
		m.usersRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, success bool) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

func (m *Metrics) RecordCoursesListViewed(ctx context.Context) {
	if m != nil && m.coursesListViewed != nil {
		m.coursesListViewed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCourseViewed(ctx context.Context) {
	if m != nil && m.coursesViewed != nil {
		m.coursesViewed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordSubmission(ctx context.Context) {
	if m != nil && m.assignmentsSubmitted != nil {
		m.assignmentsSubmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordAdminAction(ctx context.Context, action string) {
	if m != nil && m.adminActions != nil {
		m.adminActions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}, Messaging: &MessagingMetrics{}}
}
