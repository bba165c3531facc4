// Copyright 2016 NDP Systèmes. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hexya-erp/crm/src/tools/exceptions"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// root is the logger all module loggers derive from.
// It discards everything until Initialize is called.
var root = &zapLogger{}

// A Logger writes structured logs. ctx holds alternating keys and values.
type Logger interface {
	// Panic logs msg at error level then panics with msg and ctx
	Panic(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	// Debug logs a debug level message. This may be very verbose
	Debug(msg string, ctx ...interface{})
	// New returns a child logger that adds ctx to all its entries
	New(ctx ...interface{}) Logger
}

// zapLogger is a Logger backed by a zap sugared logger.
//
// Module loggers are created at package init, before the root logger is
// built: a child resolves its backend from its parent on first use.
type zapLogger struct {
	backend *zap.SugaredLogger
	ctx     []interface{}
	parent  *zapLogger
}

// sugar returns the backend of l, or nil if the root is not initialized yet.
func (l *zapLogger) sugar() *zap.SugaredLogger {
	if l.backend != nil || l.parent == nil {
		return l.backend
	}
	if parent := l.parent.sugar(); parent != nil {
		l.backend = parent.With(l.ctx...)
	}
	return l.backend
}

func (l *zapLogger) write(level zapcore.Level, msg string, ctx []interface{}) {
	s := l.sugar()
	if s == nil {
		return
	}
	switch level {
	case zapcore.ErrorLevel:
		s.Errorw(msg, ctx...)
	case zapcore.WarnLevel:
		s.Warnw(msg, ctx...)
	case zapcore.InfoLevel:
		s.Infow(msg, ctx...)
	default:
		s.Debugw(msg, ctx...)
	}
}

// Panic logs a error level message then panics
func (l *zapLogger) Panic(msg string, ctx ...interface{}) {
	l.write(zapcore.ErrorLevel, msg, ctx)
	var data strings.Builder
	data.WriteString(msg)
	for i := 0; i+1 < len(ctx); i += 2 {
		fmt.Fprintf(&data, "\n\t%v : %v", ctx[i], ctx[i+1])
	}
	panic(data.String())
}

func (l *zapLogger) Error(msg string, ctx ...interface{}) { l.write(zapcore.ErrorLevel, msg, ctx) }
func (l *zapLogger) Warn(msg string, ctx ...interface{})  { l.write(zapcore.WarnLevel, msg, ctx) }
func (l *zapLogger) Info(msg string, ctx ...interface{})  { l.write(zapcore.InfoLevel, msg, ctx) }
func (l *zapLogger) Debug(msg string, ctx ...interface{}) { l.write(zapcore.DebugLevel, msg, ctx) }

// New returns a child logger with the given context
func (l *zapLogger) New(ctx ...interface{}) Logger {
	return &zapLogger{ctx: ctx, parent: l}
}

// config returns the zap configuration read from the LogLevel, LogStdout,
// LogFile and Debug settings.
func config() zap.Config {
	cfg := zap.NewProductionConfig()
	if viper.GetBool("Debug") {
		cfg = zap.NewDevelopmentConfig()
	}
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(viper.GetString("LogLevel"))); err != nil {
		fmt.Printf("error while reading log level. Falling back to info. Error: %s\n", err.Error())
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = level
	cfg.OutputPaths = nil
	if viper.GetBool("LogStdout") {
		cfg.OutputPaths = append(cfg.OutputPaths, "stdout")
	}
	if path := viper.GetString("LogFile"); path != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, path)
	}
	return cfg
}

// Initialize builds the root logger from the configuration.
// Loggers returned by GetLogger before this call start writing afterwards.
func Initialize() {
	plainLog, err := config().Build()
	if err != nil {
		panic(err)
	}
	root.backend = plainLog.Sugar()
	root.Info("CRM Starting...")
}

// GetLogger returns a context logger for the given module
func GetLogger(moduleName string) Logger {
	return root.New("module", moduleName)
}

// LogPanicData logs the panic data with stacktrace and return an
// error with the panic message. User errors are returned as is.
func LogPanicData(panicData interface{}) error {
	if err, ok := panicData.(error); ok {
		if uErr, ok := exceptions.AsUserError(err); ok {
			return uErr
		}
	}
	msg := fmt.Sprintf("%v", panicData)
	stackTrace := debug.Stack()
	root.Error("CRM panicked", "msg", msg, "stack", string(stackTrace))
	return exceptions.UserError{
		Message: msg,
		Debug:   fmt.Sprintf("%s\n\n%s", msg, stackTrace),
	}
}

// LogForGin returns a gin middleware that logs each request with logger.
//
// Requests ending with gin errors are logged at error level, other
// requests with a 4xx or 5xx status at warn level.
func LogForGin(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// handlers may rewrite the request URL
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		c.Next()

		reqLogger := logger.New(
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
		)
		switch {
		case len(c.Errors) > 0:
			reqLogger.Error(c.Errors.String())
		case c.Writer.Status() >= 400:
			reqLogger.Warn("HTTP Error")
		default:
			reqLogger.Info("")
		}
	}
}
