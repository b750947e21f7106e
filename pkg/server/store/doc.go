// Package store provides storage abstractions for the tictoc server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation
// and tested with mocks.
//
// # Available Stores
//
//   - UsersStore: user listing, creation and lookup by email
//   - HealthStore: database connectivity checks
//
// # Usage
//
//	users := gorm.NewUsersStore(db)
//	user, err := users.FindByEmail(ctx, "chad@gmail.com")
//	if err != nil {
//	    if errors.Is(err, store.ErrUserNotFound) {
//	        // Handle not found
//	    }
//	}
package store
