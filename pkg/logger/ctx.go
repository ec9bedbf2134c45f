package logger

import (
	"bytes"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

type (
	logCtxKey struct{}
)

var logCtx logCtxKey

type StartTime time.Time

type LogID [8]byte

func (lid LogID) String() string {
	return hex.EncodeToString(lid[:])
}

var nilLogID = LogID{}

func (lid LogID) IsValid() bool {
	return !bytes.Equal(lid[:], nilLogID[:])
}

type logContext struct {
	StartTime StartTime
	RequestID string
	LogID     LogID
}

func (lgCtx *logContext) ToFields() []zap.Field {
	if lgCtx == nil {
		return nil
	}

	attrs := make([]zap.Field, 0, 2)
	attrs = append(attrs, zap.String(logIDKey, lgCtx.LogID.String()))

	if lgCtx.RequestID != "" {
		attrs = append(attrs, zap.String(requestKey, lgCtx.RequestID))
	}
	return attrs
}

func newLogContext(logID LogID) *logContext {
	return &logContext{
		LogID:     logID,
		StartTime: StartTime(time.Now()),
	}
}
