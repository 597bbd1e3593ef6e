package database

import (
	"context"
	"testing"

	"lockwise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := &models.Service{
		Name:              "Smart Lock Setup",
		Category:          models.CategoryInstallation,
		Description:       "Install and pair a smart lock",
		BasePrice:         180,
		EstimatedDuration: 90,
		IsActive:          true,
		IsBookable:        true,
	}
	require.NoError(t, db.CreateService(ctx, svc))
	assert.Greater(t, svc.ID, int64(0))

	byID, err := db.GetServiceByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smart Lock Setup", byID.Name)
	assert.Equal(t, 180.0, byID.BasePrice)
	assert.Equal(t, 90, byID.EstimatedDuration)

	// Name lookup is case-insensitive.
	byName, err := db.GetServiceByName(ctx, "smart lock setup")
	require.NoError(t, err)
	assert.Equal(t, svc.ID, byName.ID)

	_, err = db.GetServiceByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrServiceNotFound)
	_, err = db.GetServiceByName(ctx, "Moat Digging")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	svc.BasePrice = 200
	svc.Description = "Install, pair and walk the customer through the app"
	require.NoError(t, db.UpdateService(ctx, svc))
	updated, err := db.GetServiceByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, updated.BasePrice)

	missing := &models.Service{ID: 9999, Name: "Ghost", Category: models.CategoryRepair}
	assert.ErrorIs(t, db.UpdateService(ctx, missing), ErrServiceNotFound)
}

func TestListServicesActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	active := &models.Service{
		Name: "Lock Rekey", Category: models.CategoryMaintenance,
		BasePrice: 60, EstimatedDuration: 45, IsActive: true, IsBookable: true,
	}
	retired := &models.Service{
		Name: "Safe Cracking", Category: models.CategoryEmergency,
		BasePrice: 300, EstimatedDuration: 120, IsActive: true, IsBookable: true,
	}
	require.NoError(t, db.CreateService(ctx, active))
	require.NoError(t, db.CreateService(ctx, retired))

	require.NoError(t, db.DeactivateService(ctx, retired.ID))

	all, err := db.ListServices(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := db.ListServices(ctx, true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Lock Rekey", visible[0].Name)

	// Deactivation keeps the row but ends bookability.
	gone, err := db.GetServiceByID(ctx, retired.ID)
	require.NoError(t, err)
	assert.False(t, gone.IsActive)
	assert.False(t, gone.IsBookable)
	assert.False(t, gone.Bookable())

	assert.ErrorIs(t, db.DeactivateService(ctx, 9999), ErrServiceNotFound)
}
