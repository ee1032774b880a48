package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusAllHealthy(t *testing.T) {
	svc := NewService(map[string]Check{
		"credentials": func(ctx context.Context) error { return nil },
	})
	report := svc.Status(context.Background())
	if !report.OK || report.Checks["credentials"] != "ok" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestStatusReportsFailure(t *testing.T) {
	svc := NewService(map[string]Check{
		"credentials": func(ctx context.Context) error { return errors.New("connection refused") },
		"other":       func(ctx context.Context) error { return nil },
	})
	report := svc.Status(context.Background())
	if report.OK {
		t.Fatalf("expected unhealthy report")
	}
	if report.Checks["credentials"] != "connection refused" || report.Checks["other"] != "ok" {
		t.Fatalf("unexpected checks %+v", report.Checks)
	}
}

func TestNilServiceIsHealthy(t *testing.T) {
	var svc *Service
	if report := svc.Status(context.Background()); !report.OK {
		t.Fatalf("expected nil service to be healthy")
	}
}
