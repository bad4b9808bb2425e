// Copyright rtCamp and contributors
// SPDX-License-Identifier: MIT

package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestErrKeyConstant(t *testing.T) {
	if ErrKey != "error" {
		t.Errorf("expected ErrKey to be 'error', got %q", ErrKey)
	}
}

func TestAppendCtx(t *testing.T) {
	attr := slog.String("key1", "value1")
	ctx := AppendCtx(context.TODO(), attr)

	if ctx == nil {
		t.Fatal("expected non-nil context")
	}

	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		if len(attrs) != 1 {
			t.Errorf("expected 1 attribute, got %d", len(attrs))
		}
		if attrs[0].Key != "key1" {
			t.Errorf("expected key 'key1', got %q", attrs[0].Key)
		}
		if attrs[0].Value.String() != "value1" {
			t.Errorf("expected value 'value1', got %q", attrs[0].Value.String())
		}
	} else {
		t.Error("expected slog attributes in context")
	}
}

func TestAppendCtx_WithParent(t *testing.T) {
	parentCtx := context.Background()
	attr1 := slog.String("parent_key", "parent_value")
	parentCtx = AppendCtx(parentCtx, attr1)

	attr2 := slog.String("child_key", "child_value")
	childCtx := AppendCtx(parentCtx, attr2)

	if attrs, ok := childCtx.Value(slogFields).([]slog.Attr); ok {
		if len(attrs) != 2 {
			t.Errorf("expected 2 attributes, got %d", len(attrs))
		}
		if attrs[0].Key != "parent_key" {
			t.Errorf("expected first key 'parent_key', got %q", attrs[0].Key)
		}
		if attrs[1].Key != "child_key" {
			t.Errorf("expected second key 'child_key', got %q", attrs[1].Key)
		}
	} else {
		t.Error("expected slog attributes in context")
	}
}

func TestContextHandler_Handle(t *testing.T) {
	var capturedRecord *slog.Record
	testHandler := &testSlogHandler{
		handleFunc: func(ctx context.Context, r slog.Record) error {
			capturedRecord = &r
			return nil
		},
	}

	handler := contextHandler{testHandler}

	ctx := AppendCtx(context.Background(), slog.String("ctx_key", "ctx_value"))
	record := slog.Record{Message: "test message", Level: slog.LevelInfo}

	err := handler.Handle(ctx, record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedRecord == nil {
		t.Fatal("expected record to be captured")
	}

	found := false
	capturedRecord.Attrs(func(a slog.Attr) bool {
		if a.Key == "ctx_key" && a.Value.String() == "ctx_value" {
			found = true
			return false
		}
		return true
	})
	if !found {
		t.Error("expected context attribute to be added to the record")
	}
}

func TestPriority(t *testing.T) {
	attr := Priority("high")
	if attr.Key != "priority" {
		t.Errorf("expected key 'priority', got %q", attr.Key)
	}
	if attr.Value.String() != "high" {
		t.Errorf("expected value 'high', got %q", attr.Value.String())
	}
}

func TestPriorityCritical(t *testing.T) {
	attr := PriorityCritical()
	if attr.Value.String() != priorityCritical {
		t.Errorf("expected value %q, got %q", priorityCritical, attr.Value.String())
	}
}

type testSlogHandler struct {
	handleFunc func(ctx context.Context, r slog.Record) error
}

func (h *testSlogHandler) Enabled(ctx context.Context, level slog.Level) bool { return true }

func (h *testSlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.handleFunc != nil {
		return h.handleFunc(ctx, r)
	}
	return nil
}

func (h *testSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }

func (h *testSlogHandler) WithGroup(name string) slog.Handler { return h }
