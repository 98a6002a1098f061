// Package logfields holds the canonical slog attribute keys used across the build.
package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStem       = "stem"
	KeySource     = "source"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyLang       = "lang"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
	KeyCount      = "count"
	KeyWorkers    = "workers"
	KeyAddr       = "addr"
	KeyEvent      = "event"
	KeyStyle      = "style"
)

func Stem(s string) slog.Attr { return slog.String(KeyStem, s) }
func Source(p string) slog.Attr { return slog.String(KeySource, p) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Lang(l string) slog.Attr { return slog.String(KeyLang, l) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func Workers(n int) slog.Attr { return slog.Int(KeyWorkers, n) }
func Addr(a string) slog.Attr { return slog.String(KeyAddr, a) }
func Event(e string) slog.Attr { return slog.String(KeyEvent, e) }
func Style(s string) slog.Attr { return slog.String(KeyStyle, s) }

// Duration reports d in fractional milliseconds under KeyDurationMS.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
