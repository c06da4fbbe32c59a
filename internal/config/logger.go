package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

var logLevelMapping = map[string]zapcore.Level{
	logLevelDebugStringConstant: zapcore.DebugLevel,
	logLevelInfoStringConstant:  zapcore.InfoLevel,
	logLevelWarnStringConstant:  zapcore.WarnLevel,
	logLevelErrorStringConstant: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[string]string{
	logFormatStructuredStringConstant: jsonZapEncodingStringConstant,
	logFormatConsoleStringConstant:    consoleZapEncodingStringConstant,
}

// NewLogger produces a zap.Logger honoring the configured level and format.
func NewLogger(configuration Configuration) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[configuration.LogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, configuration.LogLevel)
	}

	encoding, formatExists := logFormatEncodingMapping[configuration.LogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, configuration.LogFormat)
	}

	zapConfiguration := zap.NewProductionConfig()
	zapConfiguration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	zapConfiguration.Encoding = encoding

	return zapConfiguration.Build()
}
