package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/wadjakorntonsri/birthday-admin/pkg/cache"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/domain"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/query"
	"github.com/wadjakorntonsri/birthday-admin/pkg/core/validation"
	"github.com/wadjakorntonsri/birthday-admin/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	// CacheKeyAll holds the full, name-sorted record list.
	CacheKeyAll = "birthdays:all"
	// CacheTagBirthdays is invalidated by every successful write.
	CacheTagBirthdays = "birthdays"
)

type BirthdayService struct {
	repo   ports.BirthdayRepository
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger

	// storeErrors is called with the failed operation when the store is unreachable.
	storeErrors func(op string)
}

// BirthdayOption configures a BirthdayService.
type BirthdayOption func(*BirthdayService)

// WithStoreErrorHook reports store outages, e.g. to a metrics counter.
func WithStoreErrorHook(fn func(op string)) BirthdayOption {
	return func(s *BirthdayService) { s.storeErrors = fn }
}

func NewBirthdayService(repo ports.BirthdayRepository, c *cache.Cache, ttl time.Duration, logger *zap.Logger, opts ...BirthdayOption) *BirthdayService {
	if c == nil {
		c = cache.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &BirthdayService{
		repo:        repo,
		cache:       c,
		ttl:         ttl,
		logger:      logger.With(zap.String("component", "birthday_service")),
		storeErrors: func(string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every record ordered by collated name. The result is a copy
// the caller may modify.
func (s *BirthdayService) ListAll(ctx context.Context) ([]domain.Birthday, error) {
	all, err := cache.GetOrCompute(ctx, s.cache, CacheKeyAll, s.ttl, []string{CacheTagBirthdays},
		func(ctx context.Context) ([]domain.Birthday, error) {
			records, err := s.repo.ListAll(ctx)
			if err != nil {
				return nil, s.storeFailed("list", err)
			}
			query.NewNameCollator(language.English).SortByName(records)
			return records, nil
		})
	if err != nil {
		return nil, err
	}
	return slices.Clone(all), nil
}

// Query runs the filter, sort and pagination pipeline over the full list.
func (s *BirthdayService) Query(ctx context.Context, params query.Params) (query.Result, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return query.Result{}, err
	}
	return query.Run(all, params), nil
}

func (s *BirthdayService) Create(ctx context.Context, input validation.Input) (*domain.Birthday, error) {
	fields, err := validation.ValidateCreate(input)
	if err != nil {
		return nil, err
	}

	birthday := &domain.Birthday{
		Name: fields.Name,
		Date: fields.Date,
		Link: fields.Link,
	}
	if err := s.repo.Create(ctx, birthday); err != nil {
		return nil, s.storeFailed("create", err)
	}

	s.cache.Invalidate(CacheTagBirthdays)
	s.logger.Info("birthday created", zap.String("id", birthday.ID))
	return birthday, nil
}

// Update replaces name, date and link of an existing record. Concurrent
// updates are last-write-wins.
func (s *BirthdayService) Update(ctx context.Context, input validation.Input) (*domain.Birthday, error) {
	id, fields, err := validation.ValidateUpdate(input)
	if err != nil {
		return nil, err
	}

	birthday, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, s.storeFailed("update", err)
	}

	s.cache.Invalidate(CacheTagBirthdays)
	s.logger.Info("birthday updated", zap.String("id", id))
	return birthday, nil
}

func (s *BirthdayService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeFailed("delete", err)
	}

	s.cache.Invalidate(CacheTagBirthdays)
	s.logger.Info("birthday deleted", zap.String("id", id))
	return nil
}

// storeFailed logs outages and passes every error through unchanged.
func (s *BirthdayService) storeFailed(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		s.logger.Error("store unavailable", zap.String("op", op), zap.Error(err))
		s.storeErrors(op)
	}
	return err
}

// Ensure interface compliance
var _ ports.BirthdayService = (*BirthdayService)(nil)
