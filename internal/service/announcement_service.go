package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-announcements/internal/models"
	"github.com/noah-isme/sma-announcements/internal/repository"
	appErrors "github.com/noah-isme/sma-announcements/pkg/errors"
)

const announcementCachePrefix = "announcements"

type announcementRepository interface {
	List(ctx context.Context) ([]models.Announcement, error)
	GetByID(ctx context.Context, id models.AnnouncementID) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, id models.AnnouncementID, changes models.AnnouncementChanges) (*models.Announcement, error)
	Delete(ctx context.Context, id models.AnnouncementID) (int64, error)
}

type staffAuthorizer interface {
	Authorize(ctx context.Context, username string) error
}

// AnnouncementServiceConfig tunes announcement behaviour.
type AnnouncementServiceConfig struct {
	// Location decides which calendar day counts as today. Defaults to UTC.
	Location *time.Location
	CacheTTL time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	auth      staffAuthorizer
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AnnouncementServiceConfig
}

// NewAnnouncementService constructs the service. cache and metrics may be nil.
func NewAnnouncementService(repo announcementRepository, auth staffAuthorizer, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AnnouncementServiceConfig) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AnnouncementService{
		repo:      repo,
		auth:      auth,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateAnnouncementRequest describes create payload.
type CreateAnnouncementRequest struct {
	Title           string  `json:"title" validate:"required"`
	Message         string  `json:"message" validate:"required"`
	ExpireDate      string  `json:"-"`
	StartDate       *string `json:"-"`
	TeacherUsername string  `json:"-"`
}

// UpdateAnnouncementRequest describes a partial update. Nil fields are left
// untouched; an empty StartDate clears the stored start date.
type UpdateAnnouncementRequest struct {
	Title           *string `json:"title"`
	Message         *string `json:"message"`
	ExpireDate      *string `json:"-"`
	StartDate       *string `json:"-"`
	TeacherUsername string  `json:"-"`
}

func (r UpdateAnnouncementRequest) changes() models.AnnouncementChanges {
	changes := models.AnnouncementChanges{
		Title:      r.Title,
		Message:    r.Message,
		ExpireDate: r.ExpireDate,
	}
	if r.StartDate != nil {
		if *r.StartDate == "" {
			changes.ClearStartDate = true
		} else {
			changes.StartDate = r.StartDate
		}
	}
	return changes
}

// Today returns the current calendar day in the configured location.
func (s *AnnouncementService) Today() time.Time {
	return models.CalendarDay(s.cfg.Now().In(s.cfg.Location))
}

// List returns every announcement ordered by expire_date. The bool reports a
// cache hit.
func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, bool, error) {
	key := CacheKey(announcementCachePrefix, "all")
	var cached []models.Announcement
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	items, err := s.list(ctx)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, key, items, s.cfg.CacheTTL)
	return items, false, nil
}

// ListActive returns announcements whose validity window contains today,
// ordered by the raw expire_date string.
func (s *AnnouncementService) ListActive(ctx context.Context) ([]models.Announcement, bool, error) {
	today := s.Today()
	key := CacheKey(announcementCachePrefix, "active", today.Format(models.DateLayout))
	var cached []models.Announcement
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}

	items, err := s.list(ctx)
	if err != nil {
		return nil, false, err
	}
	active := FilterActive(items, today)
	_ = s.cache.Set(ctx, key, active, s.cfg.CacheTTL)
	return active, false, nil
}

// FilterActive keeps the announcements active on day, sorted by expire_date
// as plain strings.
func FilterActive(items []models.Announcement, day time.Time) []models.Announcement {
	active := make([]models.Announcement, 0, len(items))
	for _, item := range items {
		if item.IsActiveOn(day) {
			active = append(active, item)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ExpireDate < active[j].ExpireDate
	})
	return active
}

// Create validates and stores a new announcement on behalf of a teacher.
func (s *AnnouncementService) Create(ctx context.Context, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title and message are required")
	}
	if err := s.auth.Authorize(ctx, req.TeacherUsername); err != nil {
		return nil, err
	}

	expire, ok := models.ParseDate(req.ExpireDate)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid expire_date format, expected YYYY-MM-DD")
	}

	// An unparseable start date is dropped rather than rejected.
	var startDate *string
	if req.StartDate != nil {
		if start, ok := models.ParseDate(*req.StartDate); ok {
			if start.After(expire) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "start_date cannot be after expire_date")
			}
			value := *req.StartDate
			startDate = &value
		}
	}

	announcement := &models.Announcement{
		Title:      req.Title,
		Message:    req.Message,
		StartDate:  startDate,
		ExpireDate: req.ExpireDate,
		CreatedBy:  req.TeacherUsername,
		CreatedAt:  s.cfg.Now().UTC().Format(models.CreatedAtLayout),
	}

	start := time.Now()
	err := s.repo.Create(ctx, announcement)
	s.metrics.ObserveDBQuery("announcements_insert", time.Since(start))
	if err != nil {
		s.logger.Error("create announcement failed", zap.String("created_by", req.TeacherUsername), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	s.afterMutation(ctx, "create")
	return announcement, nil
}

// Update applies a partial update. Date ordering is not re-checked against
// the stored counterpart of a changed date.
func (s *AnnouncementService) Update(ctx context.Context, rawID string, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	changes := req.changes()
	if changes.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "No updates provided")
	}
	if err := s.auth.Authorize(ctx, req.TeacherUsername); err != nil {
		return nil, err
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	_, err = s.repo.GetByID(ctx, id)
	s.metrics.ObserveDBQuery("announcements_find_one", time.Since(start))
	if err != nil {
		return nil, s.storeError(err, "failed to load announcement", id)
	}

	if changes.ExpireDate != nil {
		if _, ok := models.ParseDate(*changes.ExpireDate); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid expire_date format")
		}
	}
	if changes.StartDate != nil {
		if _, ok := models.ParseDate(*changes.StartDate); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid start_date format")
		}
	}

	start = time.Now()
	updated, err := s.repo.Update(ctx, id, changes)
	s.metrics.ObserveDBQuery("announcements_update", time.Since(start))
	if err != nil {
		return nil, s.storeError(err, "failed to update announcement", id)
	}

	s.afterMutation(ctx, "update")
	return updated, nil
}

// Delete permanently removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, rawID, teacherUsername string) error {
	if err := s.auth.Authorize(ctx, teacherUsername); err != nil {
		return err
	}
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	start := time.Now()
	deleted, err := s.repo.Delete(ctx, id)
	s.metrics.ObserveDBQuery("announcements_delete", time.Since(start))
	if err != nil {
		return s.storeError(err, "failed to delete announcement", id)
	}
	if deleted == 0 {
		return errAnnouncementNotFound()
	}

	s.afterMutation(ctx, "delete")
	return nil
}

func (s *AnnouncementService) list(ctx context.Context) ([]models.Announcement, error) {
	start := time.Now()
	items, err := s.repo.List(ctx)
	s.metrics.ObserveDBQuery("announcements_find", time.Since(start))
	if err != nil {
		s.logger.Error("list announcements failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	if items == nil {
		items = []models.Announcement{}
	}
	return items, nil
}

func (s *AnnouncementService) afterMutation(ctx context.Context, operation string) {
	s.metrics.RecordMutation(operation)
	_ = s.cache.Invalidate(ctx, CacheKey(announcementCachePrefix, "*"))
}

func (s *AnnouncementService) storeError(err error, message string, id models.AnnouncementID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errAnnouncementNotFound()
	}
	s.logger.Error(message, zap.String("announcement_id", id.String()), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func parseID(raw string) (models.AnnouncementID, error) {
	id, err := models.ParseAnnouncementID(raw)
	if err != nil {
		return id, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid announcement id")
	}
	return id, nil
}

func errAnnouncementNotFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, "Announcement not found")
}
