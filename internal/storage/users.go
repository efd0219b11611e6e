package storage

import (
	"context"

	"agenda/internal/record"
)

// Users is the flat username to credential document.
type Users struct {
	store *Store
}

// Load returns every stored user. A document never written is empty.
func (u *Users) Load(ctx context.Context) (map[string]string, error) {
	defer u.store.lock(record.KindUsers)()
	return u.load(ctx)
}

// Save overwrites the whole users document.
func (u *Users) Save(ctx context.Context, users map[string]string) error {
	defer u.store.lock(record.KindUsers)()
	return u.save(ctx, users)
}

// Lookup returns the stored credential of name.
func (u *Users) Lookup(ctx context.Context, name string) (string, bool, error) {
	users, err := u.Load(ctx)
	if err != nil {
		return "", false, err
	}
	cred, ok := users[name]
	return cred, ok, nil
}

// Insert stores a new user. It fails with ErrAlreadyExists when name is
// taken, without writing.
func (u *Users) Insert(ctx context.Context, name, credential string) error {
	return u.modify(ctx, func(users map[string]string) error {
		if _, ok := users[name]; ok {
			return ErrAlreadyExists
		}
		users[name] = credential
		return nil
	})
}

// Update replaces the credential of an existing user.
func (u *Users) Update(ctx context.Context, name, credential string) error {
	return u.modify(ctx, func(users map[string]string) error {
		if _, ok := users[name]; !ok {
			return ErrNotFound
		}
		users[name] = credential
		return nil
	})
}

func (u *Users) modify(ctx context.Context, fn func(map[string]string) error) error {
	defer u.store.lock(record.KindUsers)()
	users, err := u.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(users); err != nil {
		return err
	}
	return u.save(ctx, users)
}

func (u *Users) load(ctx context.Context) (map[string]string, error) {
	var users map[string]string
	if _, err := u.store.read(ctx, record.KindUsers, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = map[string]string{}
	}
	return users, nil
}

func (u *Users) save(ctx context.Context, users map[string]string) error {
	if users == nil {
		users = map[string]string{}
	}
	return u.store.write(ctx, record.KindUsers, users)
}
