package ports

import (
	"context"

	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/query"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/validation"
)

// BirthdayRepository defines storage operations for birthdays.
// Driver failures are reported wrapped in domain.ErrStoreUnavailable.
type BirthdayRepository interface {
	ListAll(ctx context.Context) ([]domain.Birthday, error)
	GetByID(ctx context.Context, id string) (*domain.Birthday, error) // domain.ErrNotFound if missing
	Create(ctx context.Context, birthday *domain.Birthday) error      // assigns ID and CreatedAt
	Update(ctx context.Context, id string, fields domain.BirthdayFields) (*domain.Birthday, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository defines storage operations for admin accounts
type UserRepository interface {
	GetUser(ctx context.Context, username string) (*domain.User, error) // domain.ErrNotFound if missing
	SaveUser(ctx context.Context, user *domain.User) error             // insert or replace the hash
}

// BirthdayService defines the business logic operations
type BirthdayService interface {
	ListAll(ctx context.Context) ([]domain.Birthday, error)
	Query(ctx context.Context, params query.Params) (query.Result, error)
	Create(ctx context.Context, input validation.Input) (*domain.Birthday, error)
	Update(ctx context.Context, input validation.Input) (*domain.Birthday, error)
	Delete(ctx context.Context, id string) error
}

// AuthService checks admin credentials
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	SetPassword(ctx context.Context, username, password string) error
}
