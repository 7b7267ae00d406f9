package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodshare/backend/internal/models"
)

var (
	ErrNotOwner             = errors.New("not the owner")
	ErrPortionsBelowClaimed = errors.New("portions available cannot drop below portions already claimed")
)

// MealFilters are the list-view parameters: text search, cuisine, a date
// window, and the requester's position for radius filtering.
type MealFilters struct {
	Query       string
	Cuisine     string
	When        string // "", "today", "week"
	Lat         *float64
	Lng         *float64
	RadiusMiles float64 // 0 means no limit; callers apply DefaultRadiusMiles when unset
}

// MealWithRating decorates a meal with its review aggregate.
type MealWithRating struct {
	models.Meal
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// MealList is the list-view payload. LocationFiltering is "active" when a
// radius was applied and "disabled" when the requester had no coordinates,
// so the UI can badge degraded filtering.
type MealList struct {
	Meals             []MealWithRating `json:"meals"`
	LocationFiltering string           `json:"location_filtering"`
}

// MealService handles meal CRUD and the default list view.
type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

// ListOpen returns open meals matching the filters. Radius filtering runs
// over the fetched rows; meals without coordinates are never excluded.
func (s *MealService) ListOpen(ctx context.Context, f MealFilters) (*MealList, error) {
	query := s.db.WithContext(ctx).Where("status = ?", models.MealStatusOpen)

	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(cook_name) LIKE ?", like, like, like)
	}
	if f.Cuisine != "" {
		query = query.Where("cuisine_type = ?", f.Cuisine)
	}
	switch f.When {
	case "today":
		query = query.Where("date = ?", time.Now().Format("2006-01-02"))
	case "week":
		query = query.Where("date <= ?", time.Now().AddDate(0, 0, 7).Format("2006-01-02"))
	}

	var meals []models.Meal
	if err := query.Order("created_at DESC").Find(&meals).Error; err != nil {
		return nil, err
	}

	filtered, active := FilterByRadius(meals, f.Lat, f.Lng, f.RadiusMiles)

	decorated, err := s.attachRatings(ctx, filtered)
	if err != nil {
		return nil, err
	}

	list := &MealList{Meals: decorated, LocationFiltering: "disabled"}
	if active {
		list.LocationFiltering = "active"
	}
	return list, nil
}

// ratingAggregate mirrors the GROUP BY projection below.
type ratingAggregate struct {
	MealID  uuid.UUID
	Average float64
	Count   int
}

func (s *MealService) attachRatings(ctx context.Context, meals []models.Meal) ([]MealWithRating, error) {
	decorated := make([]MealWithRating, len(meals))
	if len(meals) == 0 {
		return decorated, nil
	}

	ids := make([]uuid.UUID, len(meals))
	for i, m := range meals {
		ids[i] = m.ID
		decorated[i] = MealWithRating{Meal: m}
	}

	var aggregates []ratingAggregate
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("meal_id, AVG(rating) as average, COUNT(*) as count").
		Where("meal_id IN ?", ids).
		Group("meal_id").
		Scan(&aggregates).Error
	if err != nil {
		return nil, err
	}

	byMeal := make(map[uuid.UUID]ratingAggregate, len(aggregates))
	for _, agg := range aggregates {
		byMeal[agg.MealID] = agg
	}
	for i := range decorated {
		if agg, ok := byMeal[decorated[i].ID]; ok {
			decorated[i].AverageRating = agg.Average
			decorated[i].ReviewCount = agg.Count
		}
	}
	return decorated, nil
}

// Create inserts a meal owned by the given user. Portion counters always
// start from zero regardless of what the caller sent.
func (s *MealService) Create(ctx context.Context, owner *models.User, meal *models.Meal) (*models.Meal, error) {
	meal.ID = uuid.Nil
	meal.CreatedBy = owner.ID
	meal.CookEmail = owner.Email
	meal.CookName = owner.FullName
	meal.PortionsClaimed = 0
	meal.Status = models.MealStatusOpen

	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

// Get retrieves a meal by ID.
func (s *MealService) Get(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

// Update applies owner edits. Ownership and the claim counter are not
// editable through this path, and capacity edits hold the claimed <=
// available invariant: the row is locked against concurrent approvals,
// lowering portions_available below the claimed count is rejected, and the
// status is re-derived so a capacity change can fill or reopen the meal.
func (s *MealService) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, updates map[string]interface{}) (*models.Meal, error) {
	for _, locked := range []string{"id", "created_by", "cook_email", "portions_claimed", "status"} {
		delete(updates, locked)
	}

	var meal models.Meal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&meal, "id = ?", id).Error; err != nil {
			return err
		}
		if meal.CreatedBy != userID {
			return ErrNotOwner
		}

		if raw, present := updates["portions_available"]; present {
			if available, ok := updateInt(raw); ok && available < meal.PortionsClaimed {
				return ErrPortionsBelowClaimed
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&meal).Updates(updates).Error; err != nil {
				return err
			}
		}

		if err := tx.First(&meal, "id = ?", id).Error; err != nil {
			return err
		}
		meal.DeriveStatus()
		return tx.Model(&meal).Update("status", meal.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

// updateInt reads an integer out of a JSON-decoded update map, where numbers
// arrive as float64.
func updateInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Delete removes a meal. Admins may delete any meal, owners only their own.
func (s *MealService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) error {
	meal, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && meal.CreatedBy != userID {
		return ErrNotOwner
	}
	return s.db.WithContext(ctx).Delete(&models.Meal{}, "id = ?", id).Error
}

// ListByCook returns a cook's meals, newest first.
func (s *MealService) ListByCook(ctx context.Context, cookEmail string, openOnly bool) ([]models.Meal, error) {
	query := s.db.WithContext(ctx).Where("cook_email = ?", cookEmail)
	if openOnly {
		query = query.Where("status = ?", models.MealStatusOpen)
	}
	var meals []models.Meal
	if err := query.Order("created_at DESC").Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

// CooksWithOpenMeals returns every registered user currently offering at
// least one open meal, for the public cook directory.
func (s *MealService) CooksWithOpenMeals(ctx context.Context) ([]models.User, error) {
	sub := s.db.Model(&models.Meal{}).
		Select("cook_email").
		Where("status = ?", models.MealStatusOpen)

	var cooks []models.User
	if err := s.db.WithContext(ctx).Where("email IN (?)", sub).Order("full_name ASC").Find(&cooks).Error; err != nil {
		return nil, err
	}
	return cooks, nil
}

// ListByOwner returns the meals created by a user, newest first.
func (s *MealService) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Meal, error) {
	var meals []models.Meal
	if err := s.db.WithContext(ctx).Where("created_by = ?", userID).Order("created_at DESC").Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}
