package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CustomFormatter 自定义日志格式
type CustomFormatter struct {
	logrus.JSONFormatter
}

// Format 实现自定义格式化
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	// 获取调用信息
	if _, ok := entry.Data["file"]; !ok && entry.HasCaller() {
		entry.Data["file"] = filepath.Base(entry.Caller.File)
		entry.Data["line"] = entry.Caller.Line
		entry.Data["func"] = filepath.Base(entry.Caller.Function)
	}

	// 添加进程信息
	entry.Data["pid"] = os.Getpid()

	// 添加协程ID
	entry.Data["goroutine_id"] = getGoroutineID()

	return f.JSONFormatter.Format(entry)
}

// LogOptions 日志初始化参数
type LogOptions struct {
	Level      string // debug / info / warn / error
	FilePath   string // 为空时只输出到 stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Log is the global logger instance
var (
	Log  *logrus.Logger
	once sync.Once
)

// InitLogger 按配置初始化全局 logger，只生效一次
func InitLogger(opts LogOptions) error {
	var initErr error
	once.Do(func() {
		Log, initErr = newLogger(opts)
		if initErr != nil {
			Log, _ = newLogger(LogOptions{Level: "info"})
		}
	})
	return initErr
}

func newLogger(opts LogOptions) (*logrus.Logger, error) {
	logger := logrus.New()

	// 使用自定义格式化器
	logger.SetFormatter(&CustomFormatter{
		JSONFormatter: logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "@timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "caller_func",
				logrus.FieldKeyFile:  "caller_file",
			},
		},
	})

	var out io.Writer = os.Stdout
	if opts.FilePath != "" {
		// 创建日志目录
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
			Compress:   true,
		})
	}
	logger.SetOutput(out)

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	// 添加调用位置
	logger.SetReportCaller(true)

	return logger, nil
}

// GetLogger returns the singleton logger instance
func GetLogger() *logrus.Logger {
	once.Do(func() { Log, _ = newLogger(LogOptions{Level: "info"}) })
	return Log
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// getGoroutineID 获取当前协程ID
func getGoroutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	// 解析协程ID
	var id uint64
	fmt.Sscanf(string(b), "goroutine %d", &id)
	return id
}
