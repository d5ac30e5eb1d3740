package user

import "marketplace-service/internal/domain/document"

// User represents a registered marketplace user.
type User struct {
	ID         string          // ID is the unique document identifier
	Email      string          // Email is the unique email address of the user
	Attributes document.Fields // Attributes holds every other registration field
}
