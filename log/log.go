package log

import (
	"io"

	gethlog "github.com/ethereum/go-ethereum/log"
)

type (
	Logger  = gethlog.Logger
	Handler = gethlog.Handler
	Lvl     = gethlog.Lvl
)

const (
	LvlCrit  = gethlog.LvlCrit
	LvlError = gethlog.LvlError
	LvlWarn  = gethlog.LvlWarn
	LvlInfo  = gethlog.LvlInfo
	LvlDebug = gethlog.LvlDebug
	LvlTrace = gethlog.LvlTrace
)

func New(ctx ...interface{}) Logger {
	return gethlog.New(ctx...)
}

func Root() Logger {
	return gethlog.Root()
}

func Trace(msg string, ctx ...interface{}) { gethlog.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { gethlog.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { gethlog.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { gethlog.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { gethlog.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { gethlog.Crit(msg, ctx...) }

// NewTerminalHandler writes records at or above lvl to w, colored when color is set.
func NewTerminalHandler(lvl Lvl, w io.Writer, color bool) Handler {
	return gethlog.LvlFilterHandler(lvl, gethlog.StreamHandler(w, gethlog.TerminalFormat(color)))
}

func DiscardHandler() Handler {
	return gethlog.DiscardHandler()
}
