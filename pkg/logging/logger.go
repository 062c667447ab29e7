package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 包裝 zap.Logger，統一全專案的日誌入口
type Logger struct {
	*zap.Logger
}

// Config 日誌配置
type Config struct {
	// Level: "debug", "info", "warn", "error"
	Level string `yaml:"level"`
	// Format: "json" 或 "console"
	Format string `yaml:"format"`
}

// New 依配置建立 Logger
// 空白欄位用預設值補齊 (info / console)，單機 CLI 用 console 比較好讀
func New(cfg Config) (*Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "console"
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zapConfig.Encoding = cfg.Format
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.DisableCaller = true
	zapConfig.DisableStacktrace = true
	// 日誌走 stderr，避免跟互動式選單的 stdout 混在一起
	zapConfig.OutputPaths = []string{"stderr"}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger}, nil
}

// NewNop 回傳丟棄所有輸出的 Logger，測試用
func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

// Named 建立帶名稱的子 Logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.Logger.Named(name)}
}

// With 建立帶固定欄位的子 Logger
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{l.Logger.With(fields...)}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
