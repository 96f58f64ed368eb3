package user

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// CreateUserRequest holds the input for registering a user.
type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
}

// UpdateUserRequest is a partial update: only non-nil fields are applied.
type UpdateUserRequest struct {
	Name     *string
	Email    *string
	Password *string
	Active   *bool
}

// CreateAddressRequest holds the input for adding an address to a user.
type CreateAddressRequest struct {
	PostalCode   string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	Default      bool
}

// UpdateAddressRequest is a partial update: only non-nil fields are applied.
type UpdateAddressRequest struct {
	PostalCode   *string
	Street       *string
	Number       *string
	Complement   *string
	Neighborhood *string
	City         *string
	State        *string
	Default      *bool
}

// Service implements user and address management.
type Service struct {
	users     Repository
	addresses AddressRepository
	tx        TxRunner
}

// NewService creates a user Service.
func NewService(users Repository, addresses AddressRepository, tx TxRunner) *Service {
	return &Service{users: users, addresses: addresses, tx: tx}
}

// Create registers a new user. The email uniqueness pre-check is a fast
// fail; the storage unique constraint is the real guarantee.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, errors.Wrap(err, "check email")
		}
	}
	if existing != nil {
		return nil, &AlreadyExistsError{Email: req.Email}
	}

	u := &User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Active:   true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}

// Get returns users matching the first non-zero filter, in priority order:
// id, then email, then all users.
func (s *Service) Get(ctx context.Context, id uuid.UUID, email string) ([]User, error) {
	if id != uuid.Nil {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []User{*u}, nil
	}
	if email != "" {
		u, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return []User{*u}, nil
	}
	return s.users.List(ctx)
}

// Update applies the present fields of req to the user. Changing the email
// re-checks uniqueness against other users.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil && *req.Email != u.Email {
		other, err := s.users.GetByEmail(ctx, *req.Email)
		if err != nil {
			var nf *NotFoundError
			if !errors.As(err, &nf) {
				return nil, errors.Wrap(err, "check email")
			}
		}
		if other != nil {
			return nil, &AlreadyExistsError{Email: *req.Email}
		}
		u.Email = *req.Email
	}
	if req.Password != nil {
		u.Password = *req.Password
	}
	if req.Active != nil {
		u.Active = *req.Active
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	return u, nil
}

// Delete removes the user.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "check user")
	}
	if !ok {
		return &NotFoundError{ID: id}
	}
	return s.users.Delete(ctx, id)
}

// CreateAddress adds an address to the user. When the new address is marked
// default, the user's other addresses lose their default flag in the same
// transaction, keeping at most one default per user.
func (s *Service) CreateAddress(ctx context.Context, userID uuid.UUID, req CreateAddressRequest) (*Address, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	a := &Address{
		ID:           uuid.New(),
		UserID:       userID,
		PostalCode:   req.PostalCode,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		Default:      req.Default,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if req.Default {
			if err := s.addresses.ClearDefault(ctx, userID, uuid.Nil); err != nil {
				return errors.Wrap(err, "clear default addresses")
			}
		}
		return s.addresses.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAddress returns a single address by id.
func (s *Service) GetAddress(ctx context.Context, id uuid.UUID) (*Address, error) {
	return s.addresses.GetByID(ctx, id)
}

// ListAddresses returns the user's addresses; the user must exist.
func (s *Service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "check user")
	}
	if !ok {
		return nil, &NotFoundError{ID: userID}
	}
	return s.addresses.ListByUser(ctx, userID)
}

// UpdateAddress applies the present fields of req to the address. Promoting
// an address to default demotes the user's other addresses.
func (s *Service) UpdateAddress(ctx context.Context, id uuid.UUID, req UpdateAddressRequest) (*Address, error) {
	a, err := s.addresses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PostalCode != nil {
		a.PostalCode = *req.PostalCode
	}
	if req.Street != nil {
		a.Street = *req.Street
	}
	if req.Number != nil {
		a.Number = *req.Number
	}
	if req.Complement != nil {
		a.Complement = *req.Complement
	}
	if req.Neighborhood != nil {
		a.Neighborhood = *req.Neighborhood
	}
	if req.City != nil {
		a.City = *req.City
	}
	if req.State != nil {
		a.State = *req.State
	}

	promote := req.Default != nil && *req.Default && !a.Default
	if req.Default != nil {
		a.Default = *req.Default
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if promote {
			if err := s.addresses.ClearDefault(ctx, a.UserID, a.ID); err != nil {
				return errors.Wrap(err, "clear default addresses")
			}
		}
		return s.addresses.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAddress removes the address.
func (s *Service) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	if _, err := s.addresses.GetByID(ctx, id); err != nil {
		return err
	}
	return s.addresses.Delete(ctx, id)
}
