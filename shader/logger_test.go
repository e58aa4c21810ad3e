// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLogger(t *testing.T) {
	orig := slogger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	d := newTestDevice(t, 2, 2)
	c, err := NewCopyImage(d, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	c.Destroy()
	if !strings.Contains(buf.String(), "program created") {
		t.Errorf("log output missing program creation:\n%s", buf.String())
	}

	SetLogger(nil)
	if slogger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) left logging enabled")
	}
}
