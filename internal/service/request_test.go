package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodshare/backend/internal/models"
)

func TestRequestCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)
	ctx := context.Background()

	cook := seedUser(t, db, "cook@example.com", "Maria")
	guest := seedUser(t, db, "guest@example.com", "Sam")
	meal := seedMeal(t, db, cook, "Lasagna Night", 4)

	req, err := svc.Create(ctx, guest, meal.ID, 2, "Smells amazing")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, meal.Title, req.MealTitle)
	assert.Equal(t, cook.Email, req.CookEmail)
	assert.Equal(t, guest.Email, req.RequesterEmail)

	// Pending requests do not claim portions yet.
	var reloaded models.Meal
	require.NoError(t, db.First(&reloaded, "id = ?", meal.ID).Error)
	assert.Equal(t, 0, reloaded.PortionsClaimed)
}

func TestRequestCreateOwnMeal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)

	cook := seedUser(t, db, "cook@example.com", "Maria")
	meal := seedMeal(t, db, cook, "Lasagna Night", 4)

	_, err := svc.Create(context.Background(), cook, meal.ID, 1, "")
	assert.ErrorIs(t, err, ErrOwnMeal)
}

func TestRequestCreateTooManyPortions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)

	cook := seedUser(t, db, "cook@example.com", "Maria")
	guest := seedUser(t, db, "guest@example.com", "Sam")
	meal := seedMeal(t, db, cook, "Lasagna Night", 2)

	_, err := svc.Create(context.Background(), guest, meal.ID, 3, "")
	assert.ErrorIs(t, err, ErrNotEnoughPortions)
}

func TestRequestApproveClaimsPortions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)
	ctx := context.Background()

	cook := seedUser(t, db, "cook@example.com", "Maria")
	guest := seedUser(t, db, "guest@example.com", "Sam")
	meal := seedMeal(t, db, cook, "Lasagna Night", 3)

	req, err := svc.Create(ctx, guest, meal.ID, 2, "")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, cook, req.ID, models.RequestStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusApproved, updated.Status)

	var reloaded models.Meal
	require.NoError(t, db.First(&reloaded, "id = ?", meal.ID).Error)
	assert.Equal(t, 2, reloaded.PortionsClaimed)
	assert.Equal(t, models.MealStatusOpen, reloaded.Status)
}

func TestRequestApproveFillsMeal(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)
	ctx := context.Background()

	cook := seedUser(t, db, "cook@example.com", "Maria")
	guest := seedUser(t, db, "guest@example.com", "Sam")
	meal := seedMeal(t, db, cook, "Lasagna Night", 2)

	req, err := svc.Create(ctx, guest, meal.ID, 2, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, cook, req.ID, models.RequestStatusApproved)
	require.NoError(t, err)

	var reloaded models.Meal
	require.NoError(t, db.First(&reloaded, "id = ?", meal.ID).Error)
	assert.Equal(t, models.MealStatusFull, reloaded.Status)
	assert.Equal(t, 0, reloaded.PortionsRemaining())
}

func TestRequestApproveOverbooked(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)
	ctx := context.Background()

	cook := seedUser(t, db, "cook@example.com", "Maria")
	first := seedUser(t, db, "first@example.com", "Ana")
	second := seedUser(t, db, "second@example.com", "Ben")
	meal := seedMeal(t, db, cook, "Lasagna Night", 3)

	reqA, err := svc.Create(ctx, first, meal.ID, 2, "")
	require.NoError(t, err)
	reqB, err := svc.Create(ctx, second, meal.ID, 2, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, cook, reqA.ID, models.RequestStatusApproved)
	require.NoError(t, err)

	// Only one portion remains, so the second approval must fail and leave
	// the request pending.
	_, err = svc.UpdateStatus(ctx, cook, reqB.ID, models.RequestStatusApproved)
	assert.ErrorIs(t, err, ErrNotEnoughPortions)

	var reloadedReq models.MealRequest
	require.NoError(t, db.First(&reloadedReq, "id = ?", reqB.ID).Error)
	assert.Equal(t, models.RequestStatusPending, reloadedReq.Status)

	var reloadedMeal models.Meal
	require.NoError(t, db.First(&reloadedMeal, "id = ?", meal.ID).Error)
	assert.Equal(t, 2, reloadedMeal.PortionsClaimed)
}

func TestRequestUpdateStatusNotOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)
	ctx := context.Background()

	cook := seedUser(t, db, "cook@example.com", "Maria")
	guest := seedUser(t, db, "guest@example.com", "Sam")
	meal := seedMeal(t, db, cook, "Lasagna Night", 4)

	req, err := svc.Create(ctx, guest, meal.ID, 1, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, guest, req.ID, models.RequestStatusApproved)
	assert.ErrorIs(t, err, ErrNotRequestApprover)
}

func TestRequestInvalidTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)
	ctx := context.Background()

	cook := seedUser(t, db, "cook@example.com", "Maria")
	guest := seedUser(t, db, "guest@example.com", "Sam")
	meal := seedMeal(t, db, cook, "Lasagna Night", 4)

	req, err := svc.Create(ctx, guest, meal.ID, 1, "")
	require.NoError(t, err)

	// pending cannot jump straight to completed
	_, err = svc.UpdateStatus(ctx, cook, req.ID, models.RequestStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, cook, req.ID, models.RequestStatusDenied)
	require.NoError(t, err)

	// denied is terminal
	_, err = svc.UpdateStatus(ctx, cook, req.ID, models.RequestStatusApproved)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRequestLists(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRequestService(db)
	ctx := context.Background()

	cook := seedUser(t, db, "cook@example.com", "Maria")
	guest := seedUser(t, db, "guest@example.com", "Sam")
	mealA := seedMeal(t, db, cook, "Lasagna Night", 4)
	mealB := seedMeal(t, db, cook, "Taco Tuesday", 4)

	_, err := svc.Create(ctx, guest, mealA.ID, 1, "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, guest, mealB.ID, 2, "")
	require.NoError(t, err)

	sent, err := svc.ListByRequester(ctx, guest.Email)
	require.NoError(t, err)
	assert.Len(t, sent, 2)

	received, err := svc.ListByCook(ctx, cook.Email)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	forMeal, err := svc.ListByMeal(ctx, mealA.ID)
	require.NoError(t, err)
	require.Len(t, forMeal, 1)
	assert.Equal(t, mealA.ID, forMeal[0].MealID)
}
