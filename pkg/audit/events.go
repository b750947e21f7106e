package audit

import "fmt"

// UserCreateEvent records an attempt to create a user account
type UserCreateEvent struct {
	UserID       int64
	Email        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e UserCreateEvent) MessageID() string {
	return "user-create"
}

func (e UserCreateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("user %d (%s) created", e.UserID, e.Email)
	}
	msg := fmt.Sprintf("failed to create user %s", e.Email)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e UserCreateEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e UserCreateEvent) Facility() int {
	return FacilityAuth
}

func (e UserCreateEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	sd := map[string]map[string]string{
		SDIDSubject: {"email": e.Email},
		SDIDAction:  {"operation": "create", "result": result},
		SDIDClient:  {"ip": e.ClientIP},
	}
	if e.Success {
		sd[SDIDSubject]["user"] = fmt.Sprint(e.UserID)
	}
	return sd
}

// LoginEvent records a password login attempt
type LoginEvent struct {
	UserID       int64
	Email        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string {
	return "login"
}

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully logged in", e.Email)
	}
	msg := fmt.Sprintf("%s failed to log in", e.Email)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e LoginEvent) Facility() int {
	return FacilityAuthPriv
}

func (e LoginEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"authenticator": "password", "user": e.Email},
		SDIDClient: {"ip": e.ClientIP},
	}
	if e.Success {
		sd[SDIDAuth]["id"] = fmt.Sprint(e.UserID)
	}
	return sd
}
