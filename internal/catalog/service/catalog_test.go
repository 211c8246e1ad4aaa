package service

import (
	"context"
	"testing"

	"slotbook/internal/catalog/repository"
	"slotbook/internal/catalog/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

type stubCounter struct {
	byService    map[string]int64
	bySpecialist map[string]int64
}

func (c *stubCounter) CountActiveByService(_ context.Context, id string) (int64, error) {
	return c.byService[id], nil
}

func (c *stubCounter) CountActiveBySpecialist(_ context.Context, id string) (int64, error) {
	return c.bySpecialist[id], nil
}

func newCatalog(t *testing.T) (CatalogService, *stubCounter) {
	t.Helper()
	log := logger.New(logger.Config{Level: logger.LevelError, Service: "test"})
	counter := &stubCounter{
		byService:    map[string]int64{},
		bySpecialist: map[string]int64{},
	}
	svc := NewCatalogService(
		repository.NewMemoryServiceRepository(),
		repository.NewMemorySpecialistRepository(),
		counter,
		validator.NewCatalogValidator(log),
		&config.Config{Log: log},
	)
	return svc, counter
}

func validService() *model.Service {
	return &model.Service{
		Name:        "Haircut",
		DurationMin: 45,
		Price:       30,
	}
}

func validSpecialist(serviceIDs ...string) *model.Specialist {
	return &model.Specialist{
		Name:           "Dana Levi",
		Specialization: "Stylist",
		WorkingHours: map[string]*model.DayHours{
			"1": {Start: "09:00", End: "17:00"},
			"2": {Start: "09:00", End: "17:00"},
		},
		ServiceIDs: serviceIDs,
	}
}

func TestCreateService_AssignsIDAndNormalizes(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()

	service := validService()
	service.Name = "  Hair   Cut "
	if err := catalog.CreateService(ctx, service); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if service.ID == "" {
		t.Error("expected an id to be assigned")
	}
	if service.Name != "Hair Cut" {
		t.Errorf("expected normalized name, got %q", service.Name)
	}

	got, err := catalog.GetServiceByID(ctx, service.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.DurationMin != 45 {
		t.Errorf("expected duration 45, got %d", got.DurationMin)
	}
}

func TestCreateService_RejectsInvalid(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*model.Service)
	}{
		{"empty name", func(s *model.Service) { s.Name = "" }},
		{"zero duration", func(s *model.Service) { s.DurationMin = 0 }},
		{"negative price", func(s *model.Service) { s.Price = -1 }},
		{"oversized buffer", func(s *model.Service) { s.BufferBeforeMin = 500 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := validService()
			tt.mutate(service)
			err := catalog.CreateService(ctx, service)
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestCreateSpecialist_RejectsUnknownServiceAndBadHours(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()

	service := validService()
	if err := catalog.CreateService(ctx, service); err != nil {
		t.Fatalf("seed service failed: %v", err)
	}

	specialist := validSpecialist("no-such-service")
	if err := catalog.CreateSpecialist(ctx, specialist); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("unknown service: expected VALIDATION_ERROR, got %v", err)
	}

	specialist = validSpecialist(service.ID)
	specialist.WorkingHours["3"] = &model.DayHours{Start: "17:00", End: "09:00"}
	if err := catalog.CreateSpecialist(ctx, specialist); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("inverted window: expected VALIDATION_ERROR, got %v", err)
	}

	specialist = validSpecialist(service.ID)
	specialist.WorkingHours["7"] = &model.DayHours{Start: "09:00", End: "10:00"}
	if err := catalog.CreateSpecialist(ctx, specialist); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("bad weekday key: expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateSpecialist_AllowsDaysOff(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()

	service := validService()
	if err := catalog.CreateService(ctx, service); err != nil {
		t.Fatalf("seed service failed: %v", err)
	}

	specialist := validSpecialist(service.ID)
	specialist.WorkingHours["0"] = nil // Sunday off
	if err := catalog.CreateSpecialist(ctx, specialist); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := catalog.GetSpecialistByID(ctx, specialist.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.HoursFor(0) != nil {
		t.Error("expected Sunday to be a day off")
	}
	if got.HoursFor(1) == nil {
		t.Error("expected Monday hours present")
	}
}

func TestListSpecialistsForService(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()

	svcA := validService()
	svcB := validService()
	svcB.Name = "Coloring"
	if err := catalog.CreateService(ctx, svcA); err != nil {
		t.Fatal(err)
	}
	if err := catalog.CreateService(ctx, svcB); err != nil {
		t.Fatal(err)
	}

	both := validSpecialist(svcA.ID, svcB.ID)
	onlyA := validSpecialist(svcA.ID)
	onlyA.Name = "Avi Cohen"
	if err := catalog.CreateSpecialist(ctx, both); err != nil {
		t.Fatal(err)
	}
	if err := catalog.CreateSpecialist(ctx, onlyA); err != nil {
		t.Fatal(err)
	}

	forB, err := catalog.ListSpecialistsForService(ctx, svcB.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(forB) != 1 || forB[0].ID != both.ID {
		t.Errorf("expected only the dual-service specialist, got %d results", len(forB))
	}

	forA, err := catalog.ListSpecialistsForService(ctx, svcA.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(forA) != 2 {
		t.Errorf("expected both specialists, got %d", len(forA))
	}
}

func TestUpdateService_PartialFields(t *testing.T) {
	catalog, _ := newCatalog(t)
	ctx := context.Background()

	service := validService()
	if err := catalog.CreateService(ctx, service); err != nil {
		t.Fatal(err)
	}

	newDuration := 60
	updated, err := catalog.UpdateService(ctx, service.ID, &model.ServiceUpdate{
		DurationMin: &newDuration,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.DurationMin != 60 {
		t.Errorf("expected duration 60, got %d", updated.DurationMin)
	}
	if updated.Name != service.Name {
		t.Errorf("expected name untouched, got %q", updated.Name)
	}
}

func TestDelete_BlockedWhileActiveBookings(t *testing.T) {
	catalog, counter := newCatalog(t)
	ctx := context.Background()

	service := validService()
	if err := catalog.CreateService(ctx, service); err != nil {
		t.Fatal(err)
	}
	specialist := validSpecialist(service.ID)
	if err := catalog.CreateSpecialist(ctx, specialist); err != nil {
		t.Fatal(err)
	}

	counter.byService[service.ID] = 2
	counter.bySpecialist[specialist.ID] = 1

	if err := catalog.DeleteService(ctx, service.ID); !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT deleting referenced service, got %v", err)
	}
	if err := catalog.DeleteSpecialist(ctx, specialist.ID); !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT deleting referenced specialist, got %v", err)
	}

	counter.byService[service.ID] = 0
	counter.bySpecialist[specialist.ID] = 0

	if err := catalog.DeleteSpecialist(ctx, specialist.ID); err != nil {
		t.Errorf("delete specialist failed: %v", err)
	}
	if err := catalog.DeleteService(ctx, service.ID); err != nil {
		t.Errorf("delete service failed: %v", err)
	}

	if _, err := catalog.GetServiceByID(ctx, service.ID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}
}
