package backup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_Validation(t *testing.T) {
	m := NewManager(Config{Dir: t.TempDir()}, &fakeRunner{})

	tests := []struct {
		name    string
		config  ScheduleConfig
		wantErr bool
	}{
		{"valid cron", ScheduleConfig{CronExpr: "0 3 * * *"}, false},
		{"valid interval", ScheduleConfig{Interval: time.Hour}, false},
		{"bad cron", ScheduleConfig{CronExpr: "not a cron"}, true},
		{"nothing set", ScheduleConfig{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(m, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScheduler_IntervalMode(t *testing.T) {
	runner := &fakeRunner{}
	m := NewManager(Config{DSN: "x", Dir: t.TempDir()}, runner)

	s, err := NewScheduler(m, ScheduleConfig{Interval: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.NotEmpty(t, runner.dumped, "interval schedule produced no dumps")
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	m := NewManager(Config{DSN: "x", Dir: t.TempDir()}, &fakeRunner{})

	s, err := NewScheduler(m, ScheduleConfig{Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
