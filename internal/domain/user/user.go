package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is a registered customer account.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Active    bool
	CreatedAt time.Time
}

// Address is a shipping destination owned by a single user.
// At most one address per user has Default set.
type Address struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	PostalCode   string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	Default      bool
	CreatedAt    time.Time
}

// NotFoundError indicates a referenced user does not exist.
type NotFoundError struct {
	ID    uuid.UUID
	Email string
}

func (e *NotFoundError) Error() string {
	if e.Email != "" {
		return fmt.Sprintf("user with email %q not found", e.Email)
	}
	return fmt.Sprintf("user %s not found", e.ID)
}

// AlreadyExistsError indicates the email is already taken by another user.
type AlreadyExistsError struct {
	Email string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("user with email %q already exists", e.Email)
}

// AddressNotFoundError indicates a referenced address does not exist.
type AddressNotFoundError struct {
	ID uuid.UUID
}

func (e *AddressNotFoundError) Error() string {
	return fmt.Sprintf("address %s not found", e.ID)
}

// Repository defines persistence operations for users.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AddressRepository defines persistence operations for addresses.
type AddressRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClearDefault unsets the default flag on every address of the user
	// except the given one. Pass uuid.Nil to clear all.
	ClearDefault(ctx context.Context, userID, exceptID uuid.UUID) error
}

// TxRunner executes fn inside a single storage transaction. All repository
// calls made with the callback context join that transaction; a non-nil
// error from fn rolls everything back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
