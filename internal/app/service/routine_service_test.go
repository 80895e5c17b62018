package service

import (
	"testing"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutineService_Lifecycle(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	skinTypeRepo := repository.NewSkinTypeRepository(testDB)
	svc := NewRoutineService(
		repository.NewRoutineRepository(testDB),
		skinTypeRepo,
		repository.NewProductRepository(testDB),
	)
	oily, err := NewSkinTypeService(skinTypeRepo).Create(SkinTypeInput{Name: "Oily", MinScore: 0, MaxScore: 10})
	require.NoError(t, err)
	cleanser := createTestProduct(t, testDB, "Gel Cleanser", 200000, 0, 5)
	toner := createTestProduct(t, testDB, "BHA Toner", 300000, 250000, 5)

	routine, err := svc.CreateRoutine(RoutineInput{
		SkinTypeID: oily.ID,
		Period:     model.PeriodMorning,
		Title:      "Oily AM",
		Steps: []RoutineStepInput{
			{Name: "Cleanse", ProductIDs: []uint{cleanser.ID, cleanser.ID}},
			{Name: "Tone", ProductIDs: []uint{toner.ID}},
		},
	})
	require.NoError(t, err)
	require.Len(t, routine.Steps, 2)
	assert.Equal(t, 1, routine.Steps[0].StepOrder)
	assert.Equal(t, "Tone", routine.Steps[1].Name)
	assert.Len(t, routine.Steps[0].Products, 1, "duplicate product ids collapse")

	_, err = svc.CreateRoutine(RoutineInput{SkinTypeID: oily.ID, Period: "noon", Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = svc.CreateRoutine(RoutineInput{SkinTypeID: 999, Period: model.PeriodEvening, Title: "x"})
	assert.ErrorIs(t, err, ErrSkinTypeNotFound)
	_, err = svc.CreateRoutine(RoutineInput{
		SkinTypeID: oily.ID,
		Period:     model.PeriodEvening,
		Title:      "x",
		Steps:      []RoutineStepInput{{Name: "Missing", ProductIDs: []uint{999}}},
	})
	assert.ErrorIs(t, err, ErrProductNotFound)

	step, err := svc.AddStep(routine.ID, RoutineStepInput{Name: "Sunscreen"})
	require.NoError(t, err)
	assert.Equal(t, 3, step.StepOrder)

	step, err = svc.SetStepProducts(step.ID, []uint{toner.ID, cleanser.ID})
	require.NoError(t, err)
	assert.Len(t, step.Products, 2)

	step, err = svc.UpdateStep(step.ID, RoutineStepInput{Name: "Protect", ProductIDs: []uint{}})
	require.NoError(t, err)
	assert.Equal(t, "Protect", step.Name)
	assert.Empty(t, step.Products)

	morning := model.PeriodMorning
	evening := model.PeriodEvening
	found, err := svc.GetRoutinesBySkinType(oily.ID, &morning)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	found, err = svc.GetRoutinesBySkinType(oily.ID, &evening)
	require.NoError(t, err)
	assert.Empty(t, found)

	updated, err := svc.UpdateRoutine(routine.ID, RoutineInput{SkinTypeID: oily.ID, Period: model.PeriodEvening, Title: "Oily PM"})
	require.NoError(t, err)
	assert.Equal(t, model.PeriodEvening, updated.Period)
	assert.Len(t, updated.Steps, 3)

	require.NoError(t, svc.DeleteStep(step.ID))
	assert.ErrorIs(t, svc.DeleteStep(step.ID), ErrRoutineStepNotFound)

	require.NoError(t, svc.DeleteRoutine(routine.ID))
	_, err = svc.GetRoutineByID(routine.ID)
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}
