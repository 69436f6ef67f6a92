package models

import "time"

// DefaultStorageLimitBytes to systemowy limit miejsca (2 GiB) obowiązujący,
// gdy użytkownik nie ma ustawionego własnego, wyższego limitu.
const DefaultStorageLimitBytes int64 = 2 * 1024 * 1024 * 1024

type User struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Email             string    `json:"email" db:"email"`
	PasswordHash      string    `json:"-" db:"password_hash"`
	StorageLimitBytes int64     `json:"storage_limit_bytes" db:"storage_limit_bytes"`
	UsedStorageBytes  int64     `json:"used_storage_bytes" db:"used_storage_bytes"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// EffectiveStorageLimit zwraca limit nie mniejszy niż systemowy domyślny,
// nawet jeśli w bazie zapisano 0.
func (u *User) EffectiveStorageLimit() int64 {
	if u.StorageLimitBytes > DefaultStorageLimitBytes {
		return u.StorageLimitBytes
	}
	return DefaultStorageLimitBytes
}

// PublicUser to projekcja użytkownika zwracana przez API (bez hasha hasła).
type PublicUser struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	StorageLimitBytes int64     `json:"storage_limit_bytes"`
	UsedStorageBytes  int64     `json:"used_storage_bytes"`
	CreatedAt         time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		StorageLimitBytes: u.EffectiveStorageLimit(),
		UsedStorageBytes:  u.UsedStorageBytes,
		CreatedAt:         u.CreatedAt,
	}
}
