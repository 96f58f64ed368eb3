package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeUserRepo struct {
	byID map[uuid.UUID]*User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, &NotFoundError{Email: email}
}

func (f *fakeUserRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u *User) error {
	c := *u
	f.byID[u.ID] = &c
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return &NotFoundError{ID: u.ID}
	}
	c := *u
	f.byID[u.ID] = &c
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeAddressRepo struct {
	byID map[uuid.UUID]*Address
}

func (f *fakeAddressRepo) GetByID(_ context.Context, id uuid.UUID) (*Address, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, &AddressNotFoundError{ID: id}
	}
	c := *a
	return &c, nil
}

func (f *fakeAddressRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Address, error) {
	var out []Address
	for _, a := range f.byID {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAddressRepo) Create(_ context.Context, a *Address) error {
	c := *a
	f.byID[a.ID] = &c
	return nil
}

func (f *fakeAddressRepo) Update(_ context.Context, a *Address) error {
	if _, ok := f.byID[a.ID]; !ok {
		return &AddressNotFoundError{ID: a.ID}
	}
	c := *a
	f.byID[a.ID] = &c
	return nil
}

func (f *fakeAddressRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeAddressRepo) ClearDefault(_ context.Context, userID, exceptID uuid.UUID) error {
	for _, a := range f.byID {
		if a.UserID == userID && a.ID != exceptID {
			a.Default = false
		}
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *fakeUserRepo, *fakeAddressRepo) {
	users := &fakeUserRepo{byID: make(map[uuid.UUID]*User)}
	addresses := &fakeAddressRepo{byID: make(map[uuid.UUID]*Address)}
	return NewService(users, addresses, passthroughTx{}), users, addresses
}

// --- Users ---

func TestCreate(t *testing.T) {
	svc, users, _ := newTestService()

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.True(t, u.Active)
	assert.Contains(t, users.byID, u.ID)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Alice", Email: "alice@example.com", Password: "secret",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserRequest{
		Name: "Other Alice", Email: "alice@example.com", Password: "hunter2",
	})

	var existsErr *AlreadyExistsError
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "alice@example.com", existsErr.Email)
}

func TestGet_Priority(t *testing.T) {
	svc, _, _ := newTestService()

	alice, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Alice", Email: "alice@example.com", Password: "x",
	})
	require.NoError(t, err)
	bob, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Bob", Email: "bob@example.com", Password: "x",
	})
	require.NoError(t, err)

	// The id filter wins over the email filter.
	got, err := svc.Get(context.Background(), alice.ID, bob.Email)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alice.ID, got[0].ID)

	// Email only.
	got, err = svc.Get(context.Background(), uuid.Nil, bob.Email)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bob.ID, got[0].ID)

	// No filter lists everyone.
	got, err = svc.Get(context.Background(), uuid.Nil, "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdate_Partial(t *testing.T) {
	svc, _, _ := newTestService()

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Alice", Email: "alice@example.com", Password: "secret",
	})
	require.NoError(t, err)

	name := "Alice Smith"
	updated, err := svc.Update(context.Background(), u.ID, UpdateUserRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, "secret", updated.Password)
}

func TestUpdate_EmailTaken(t *testing.T) {
	svc, _, _ := newTestService()

	alice, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Alice", Email: "alice@example.com", Password: "x",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateUserRequest{
		Name: "Bob", Email: "bob@example.com", Password: "x",
	})
	require.NoError(t, err)

	taken := "bob@example.com"
	_, err = svc.Update(context.Background(), alice.ID, UpdateUserRequest{Email: &taken})

	var existsErr *AlreadyExistsError
	require.ErrorAs(t, err, &existsErr)
}

func TestUpdate_SameEmailIsNoop(t *testing.T) {
	svc, _, _ := newTestService()

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Alice", Email: "alice@example.com", Password: "x",
	})
	require.NoError(t, err)

	same := "alice@example.com"
	updated, err := svc.Update(context.Background(), u.ID, UpdateUserRequest{Email: &same})
	require.NoError(t, err)
	assert.Equal(t, same, updated.Email)
}

func TestDelete_Missing(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), uuid.New())

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

// --- Addresses ---

func TestCreateAddress_MissingUser(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateAddress(context.Background(), uuid.New(), CreateAddressRequest{
		PostalCode: "12345-678", Street: "Main St", City: "Springfield", State: "SP",
	})

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestCreateAddress_SingleDefault(t *testing.T) {
	svc, _, addresses := newTestService()

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Alice", Email: "alice@example.com", Password: "x",
	})
	require.NoError(t, err)

	first, err := svc.CreateAddress(context.Background(), u.ID, CreateAddressRequest{
		PostalCode: "11111-111", Street: "First St", City: "Town", State: "SP", Default: true,
	})
	require.NoError(t, err)
	assert.True(t, first.Default)

	second, err := svc.CreateAddress(context.Background(), u.ID, CreateAddressRequest{
		PostalCode: "22222-222", Street: "Second St", City: "Town", State: "SP", Default: true,
	})
	require.NoError(t, err)
	assert.True(t, second.Default)

	// The first address lost its default flag.
	assert.False(t, addresses.byID[first.ID].Default)
	assert.True(t, addresses.byID[second.ID].Default)
}

func TestCreateAddress_NonDefaultKeepsExisting(t *testing.T) {
	svc, _, addresses := newTestService()

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Alice", Email: "alice@example.com", Password: "x",
	})
	require.NoError(t, err)

	first, err := svc.CreateAddress(context.Background(), u.ID, CreateAddressRequest{
		PostalCode: "11111-111", Street: "First St", City: "Town", State: "SP", Default: true,
	})
	require.NoError(t, err)

	_, err = svc.CreateAddress(context.Background(), u.ID, CreateAddressRequest{
		PostalCode: "22222-222", Street: "Second St", City: "Town", State: "SP",
	})
	require.NoError(t, err)

	assert.True(t, addresses.byID[first.ID].Default)
}

func TestUpdateAddress_PromoteDemotesOthers(t *testing.T) {
	svc, _, addresses := newTestService()

	u, err := svc.Create(context.Background(), CreateUserRequest{
		Name: "Alice", Email: "alice@example.com", Password: "x",
	})
	require.NoError(t, err)

	first, err := svc.CreateAddress(context.Background(), u.ID, CreateAddressRequest{
		PostalCode: "11111-111", Street: "First St", City: "Town", State: "SP", Default: true,
	})
	require.NoError(t, err)
	second, err := svc.CreateAddress(context.Background(), u.ID, CreateAddressRequest{
		PostalCode: "22222-222", Street: "Second St", City: "Town", State: "SP",
	})
	require.NoError(t, err)

	promote := true
	updated, err := svc.UpdateAddress(context.Background(), second.ID, UpdateAddressRequest{
		Default: &promote,
	})
	require.NoError(t, err)
	assert.True(t, updated.Default)

	assert.False(t, addresses.byID[first.ID].Default)
	assert.True(t, addresses.byID[second.ID].Default)
}

func TestListAddresses_MissingUser(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListAddresses(context.Background(), uuid.New())

	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestDeleteAddress_Missing(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.DeleteAddress(context.Background(), uuid.New())

	var nfErr *AddressNotFoundError
	require.ErrorAs(t, err, &nfErr)
}
