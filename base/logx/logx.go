// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx provides the default structured logger used by
// forcegraph commands, with terminal colored levels.
package logx

import (
	"io"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
)

// UserLevel is the verbosity level set by the user, and the
// minimum level the default logger prints.
var UserLevel = slog.LevelInfo

// SetDefaultLogger sets the default slog logger to one that
// writes colored text to stderr at [UserLevel].
func SetDefaultLogger() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, UserLevel)))
}

// NewHandler returns a text handler writing to w that colors
// the level key according to the terminal capabilities of w.
// Outputs that are not terminals get plain text.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	out := termenv.NewOutput(w)
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey || len(groups) > 0 {
				return a
			}
			lv, ok := a.Value.Any().(slog.Level)
			if !ok {
				return a
			}
			a.Value = slog.StringValue(out.String(lv.String()).Foreground(LevelColor(lv)).String())
			return a
		},
	})
}

// LevelColor returns the terminal color for the given level.
func LevelColor(lv slog.Level) termenv.Color {
	switch {
	case lv >= slog.LevelError:
		return termenv.ANSIRed
	case lv >= slog.LevelWarn:
		return termenv.ANSIYellow
	case lv >= slog.LevelInfo:
		return termenv.ANSIGreen
	default:
		return termenv.ANSIBrightBlack
	}
}
