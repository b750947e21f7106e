// Package gorm implements the user and health stores on PostgreSQL through GORM.
//
// Driver errors are translated to the sentinel errors of pkg/server/store:
// a unique violation on users.email (SQLSTATE 23505) becomes ErrEmailTaken and
// a missing row becomes ErrUserNotFound.
package gorm
