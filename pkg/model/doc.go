// Package model defines the database models for tictoc.
//
// Models map to the tables created by the migrations in the top-level db
// package and are read and written through GORM by pkg/server/store/gorm.
//
// # Core Models
//
//   - User: an account holder with a bcrypt password hash
//   - UserView: the public projection of a User, also used as token claims
package model
