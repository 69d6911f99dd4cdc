// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_HandleLog(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)

	logger := &log.Logger{Handler: h, Level: log.DebugLevel}
	logger.WithFields(log.Fields{"status": 401, "endpoint": "/users/get"}).Warn("unauthorized")

	out := buf.String()
	assert.Contains(t, out, " W unauthorized")
	// Fields are emitted in sorted order.
	assert.Contains(t, out, "endpoint=/users/get status=401\n")
}

func TestInitLogger_Level(t *testing.T) {
	t.Setenv("GALLERY_LOG", "debug")
	InitLogger()

	l, ok := log.Log.(*log.Logger)
	if assert.True(t, ok) {
		assert.Equal(t, log.DebugLevel, l.Level)
	}

	t.Setenv("GALLERY_LOG", "")
	InitLogger()
	if assert.True(t, ok) {
		assert.Equal(t, log.ErrorLevel, l.Level)
	}
}
