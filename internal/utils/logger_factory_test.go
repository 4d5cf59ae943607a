package utils_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/submodule-commitmsg/internal/utils"
)

const (
	testLoggerFactoryCaseSupportedTemplateConstant = "supported_log_level_%s_format_%s"
	testLoggerFactorySubtestTemplateConstant       = "%d_%s"
	testInvalidLogLevelConstant                    = "invalid"
	testInvalidLogFormatConstant                   = "invalid"
	testLogMessageConstant                         = "logger_factory_test_message"
	testSuppressedLogMessageConstant               = "logger_factory_suppressed_message"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		expectError         bool
		expectStructuredLog bool
	}{
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedTemplateConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelDebug,
			requestedLogFormat:  utils.LogFormatStructured,
			expectStructuredLog: true,
		},
		{
			name:               fmt.Sprintf(testLoggerFactoryCaseSupportedTemplateConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormatConsole,
		},
		{
			name:                "uppercase_values_accepted",
			requestedLogLevel:   utils.LogLevel("INFO"),
			requestedLogFormat:  utils.LogFormat("Structured"),
			expectStructuredLog: true,
		},
		{
			name:               "unsupported_log_level",
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               "unsupported_log_format",
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			var capturedOutput bytes.Buffer
			loggerFactory := utils.NewLoggerFactoryWithOutput(&capturedOutput)

			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}

			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)

			logger.Info(testLogMessageConstant)
			require.NoError(testInstance, utils.SyncLogger(logger))

			trimmedOutput := bytes.TrimSpace(capturedOutput.Bytes())
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(trimmedOutput))
		})
	}
}

func TestLoggerFactoryHonorsLevelThreshold(testInstance *testing.T) {
	var capturedOutput bytes.Buffer
	logger, creationError := utils.NewLoggerFactoryWithOutput(&capturedOutput).CreateLogger(utils.LogLevelError, utils.LogFormatConsole)
	require.NoError(testInstance, creationError)

	logger.Warn(testSuppressedLogMessageConstant)
	logger.Error(testLogMessageConstant)

	require.NotContains(testInstance, capturedOutput.String(), testSuppressedLogMessageConstant)
	require.Contains(testInstance, capturedOutput.String(), testLogMessageConstant)
}

func TestSyncLoggerAcceptsNil(testInstance *testing.T) {
	require.NoError(testInstance, utils.SyncLogger(nil))
	require.NoError(testInstance, utils.SyncLogger(zap.NewNop()))
}
