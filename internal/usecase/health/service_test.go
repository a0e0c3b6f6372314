package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockIndexChecker struct {
	err error
}

func (m *mockIndexChecker) CheckIndex(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		index      error
		db         DBPinger
		wantStatus Status
		wantChecks map[string]CheckResult
	}{
		{
			name:       "index only healthy",
			wantStatus: Healthy,
			wantChecks: map[string]CheckResult{"index": CheckOK},
		},
		{
			name:       "degenerate index",
			index:      errors.New("no data"),
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{"index": CheckError},
		},
		{
			name:       "with database",
			db:         &mockDBPinger{},
			wantStatus: Healthy,
			wantChecks: map[string]CheckResult{"index": CheckOK, "database": CheckOK},
		},
		{
			name:       "database down",
			db:         &mockDBPinger{err: errors.New("conn refused")},
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{"index": CheckOK, "database": CheckError},
		},
		{
			name:       "both fail",
			index:      errors.New("no data"),
			db:         &mockDBPinger{err: errors.New("conn refused")},
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{"index": CheckError, "database": CheckError},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockIndexChecker{err: tt.index}, tt.db)
			r := svc.Check(context.Background())

			if r.Status != tt.wantStatus {
				t.Errorf("expected %q, got %q", tt.wantStatus, r.Status)
			}
			if len(r.Checks) != len(tt.wantChecks) {
				t.Fatalf("expected checks %v, got %v", tt.wantChecks, r.Checks)
			}
			for k, v := range tt.wantChecks {
				if r.Checks[k] != v {
					t.Errorf("check %s: expected %q, got %q", k, v, r.Checks[k])
				}
			}
		})
	}
}
