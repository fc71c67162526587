package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/zond/azimuth"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey int

const (
	sessionIDKey contextKey = iota
)

// SetSessionID returns a context carrying the session id, so that all audit
// events of a connection can be correlated.
func SetSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// GenerateSessionID creates a unique session ID.
func GenerateSessionID() string {
	return azimuth.NextID()
}

// AuditLogger writes security-relevant events to a rotated log file as JSON.
type AuditLogger struct {
	mu  sync.Mutex
	out io.WriteCloser
	enc *json.Encoder
}

// AuditRef identifies a player by both id and name for audit logging.
// The id is empty when no player exists, e.g. for a failed login with an
// unknown username.
type AuditRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Ref creates an AuditRef with the given ID and name.
func Ref(id string, name string) AuditRef {
	return AuditRef{ID: id, Name: name}
}

// AuditData is the interface for typed audit event data.
type AuditData interface {
	auditData()
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	Time      string    `json:"time"`
	SessionID string    `json:"session_id,omitempty"`
	Event     string    `json:"event"`
	Data      AuditData `json:"data"`
}

const (
	AuditEventUserCreate  = "USER_CREATE"
	AuditEventUserLogin   = "USER_LOGIN"
	AuditEventLoginFailed = "LOGIN_FAILED"
	AuditEventSessionEnd  = "SESSION_END"
)

// AuditUserCreate is logged when a new user registers.
type AuditUserCreate struct {
	User   AuditRef `json:"user"`
	Email  string   `json:"email,omitempty"`
	Remote string   `json:"remote"`
}

func (AuditUserCreate) auditData() {}

// AuditUserLogin is logged on successful login.
type AuditUserLogin struct {
	User   AuditRef `json:"user"`
	Remote string   `json:"remote"`
}

func (AuditUserLogin) auditData() {}

// AuditSessionEnd is logged when a session ends (disconnect/logout).
type AuditSessionEnd struct {
	User AuditRef `json:"user"`
}

func (AuditSessionEnd) auditData() {}

// AuditLoginFailed is logged on failed login attempt.
type AuditLoginFailed struct {
	User   AuditRef `json:"user"`
	Reason string   `json:"reason"`
	Remote string   `json:"remote"`
}

func (AuditLoginFailed) auditData() {}

// NewAuditLogger creates a new audit logger writing to the specified file,
// rotating it when it grows beyond maxSizeMB.
func NewAuditLogger(path string, maxSizeMB int) *AuditLogger {
	return NewAuditLoggerTo(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 10,
		Compress:   true,
	})
}

// NewAuditLoggerTo creates an audit logger writing to w.
func NewAuditLoggerTo(w io.WriteCloser) *AuditLogger {
	return &AuditLogger{
		out: w,
		enc: json.NewEncoder(w),
	}
}

// Log writes a structured audit entry as JSON.
// Panics if encoding fails (indicates a bug in the typed AuditData structs).
// A nil logger discards the entry.
func (a *AuditLogger) Log(ctx context.Context, event string, data AuditData) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	sessionID, _ := SessionID(ctx)
	if err := a.enc.Encode(AuditEntry{
		Time:      time.Now().UTC().Format(time.RFC3339Nano),
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}); err != nil {
		panic(fmt.Sprintf("audit log encode failed: %v", err))
	}
}

// Close closes the audit log file.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.out.Close()
}
