// Package audit provides audit logging for tictoc operations.
//
// Security-relevant operations (account creation, login attempts) are
// written as RFC5424 syslog lines, by default to stdout, and optionally
// persisted to the audit_messages table.
//
// # Event Types
//
//   - UserCreateEvent: a user account was created, or creation was refused
//   - LoginEvent: a login attempt succeeded or failed
//
// # Usage
//
//	audit.Log(audit.LoginEvent{Email: email, ClientIP: ip, Success: true})
//
// # Environment Variables
//
//   - TICTOC_AUDIT_ENABLED: set to "false" to turn audit logging off
//   - TICTOC_AUDIT_DATABASE_URL: PostgreSQL URL for persisting events
package audit
