package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTabHandler_Handle(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "20250310T143045Z-apply",
			level:   slog.LevelInfo,
			message: "batch committed",
			want:    "2025-03-10T14:30:45Z\tINFO\t20250310T143045Z-apply\tbatch committed\n",
		},
		{
			name:    "warn level",
			opID:    "op-1",
			level:   slog.LevelWarn,
			message: "rename failed",
			want:    "2025-03-10T14:30:45Z\tWARN\top-1\trename failed\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-2",
			level:   slog.LevelInfo,
			message: "pipeline finished",
			attrs:   []slog.Attr{slog.Int("total", 5), slog.Int("dispatched", 3)},
			want:    "2025-03-10T14:30:45Z\tINFO\top-2\tpipeline finished\ttotal=5\tdispatched=3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &tabHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTabHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := &tabHandler{w: &buf, opID: "op-3"}
	h := base.WithAttrs([]slog.Attr{slog.String("batch", "batch-1")})

	r := slog.NewRecord(time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), slog.LevelInfo, "undone", 0)
	r.AddAttrs(slog.Int("restored", 2))

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "\tbatch=batch-1\t") {
		t.Errorf("pre-set attr missing from output: %q", got)
	}
	if !strings.Contains(got, "\trestored=2\n") {
		t.Errorf("record attr missing from output: %q", got)
	}
}
