package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	catalogerrors "slotbook/internal/catalog/errors"
	"slotbook/internal/catalog/repository"
	"slotbook/internal/catalog/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
)

// ActiveBookingCounter reports how many active bookings reference a
// catalog entry. Deletion is refused while the count is non-zero.
type ActiveBookingCounter interface {
	CountActiveByService(ctx context.Context, serviceID string) (int64, error)
	CountActiveBySpecialist(ctx context.Context, specialistID string) (int64, error)
}

type CatalogService interface {
	CreateService(ctx context.Context, service *model.Service) error
	GetServiceByID(ctx context.Context, id string) (*model.Service, error)
	ListServices(ctx context.Context) ([]*model.Service, error)
	UpdateService(ctx context.Context, id string, updates *model.ServiceUpdate) (*model.Service, error)
	DeleteService(ctx context.Context, id string) error

	CreateSpecialist(ctx context.Context, specialist *model.Specialist) error
	GetSpecialistByID(ctx context.Context, id string) (*model.Specialist, error)
	ListSpecialists(ctx context.Context) ([]*model.Specialist, error)
	ListSpecialistsForService(ctx context.Context, serviceID string) ([]*model.Specialist, error)
	UpdateSpecialist(ctx context.Context, id string, updates *model.SpecialistUpdate) (*model.Specialist, error)
	DeleteSpecialist(ctx context.Context, id string) error
}

type catalogService struct {
	services    repository.ServiceRepository
	specialists repository.SpecialistRepository
	bookings    ActiveBookingCounter
	validator   *validator.CatalogValidator
	cfg         *config.Config
}

func NewCatalogService(
	services repository.ServiceRepository,
	specialists repository.SpecialistRepository,
	bookings ActiveBookingCounter,
	validator *validator.CatalogValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		services:    services,
		specialists: specialists,
		bookings:    bookings,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *catalogService) CreateService(ctx context.Context, service *model.Service) error {
	service.Name = sanitizer.NormalizeName(service.Name)

	if err := s.validator.ValidateService(service); err != nil {
		s.cfg.Log.Warn("Service validation failed", "name", service.Name, "error", err)
		return apperrors.Validation("Service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if service.ID == "" {
		service.ID = uuid.NewString()
	}

	if err := s.services.Create(ctx, service); err != nil {
		s.cfg.Log.Error("Failed to create service", "name", service.Name, "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created successfully", "service_id", service.ID, "name", service.Name)
	return nil
}

func (s *catalogService) GetServiceByID(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("service id is required")
	}

	service, err := s.services.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		return nil, apperrors.Internal("Failed to get service", err)
	}
	return service, nil
}

func (s *catalogService) ListServices(ctx context.Context) ([]*model.Service, error) {
	services, err := s.services.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list services", err)
	}
	return services, nil
}

func (s *catalogService) UpdateService(ctx context.Context, id string, updates *model.ServiceUpdate) (*model.Service, error) {
	if err := s.validator.ValidateServiceUpdate(updates); err != nil {
		return nil, apperrors.Validation("Service update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	service, err := s.GetServiceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyServiceUpdate(service, updates)

	if err := s.validator.ValidateService(service); err != nil {
		return nil, apperrors.Validation("Service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.services.Update(ctx, service); err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		return nil, apperrors.Internal("Failed to update service", err)
	}

	s.cfg.Log.Info("Service updated successfully", "service_id", id)
	return service, nil
}

func (s *catalogService) DeleteService(ctx context.Context, id string) error {
	if _, err := s.GetServiceByID(ctx, id); err != nil {
		return err
	}

	count, err := s.bookings.CountActiveByService(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check bookings for service", err)
	}
	if count > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"Service has %d active booking(s) and cannot be deleted", count,
		))
	}

	if err := s.services.Delete(ctx, id); err != nil {
		if errors.Is(err, catalogerrors.ErrServiceNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		return apperrors.Internal("Failed to delete service", err)
	}

	s.cfg.Log.Info("Service deleted successfully", "service_id", id)
	return nil
}

func (s *catalogService) CreateSpecialist(ctx context.Context, specialist *model.Specialist) error {
	s.sanitizeSpecialist(specialist)

	if err := s.validator.ValidateSpecialist(specialist); err != nil {
		s.cfg.Log.Warn("Specialist validation failed", "name", specialist.Name, "error", err)
		return apperrors.Validation("Specialist validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.checkServicesExist(ctx, specialist.ServiceIDs); err != nil {
		return err
	}

	if specialist.ID == "" {
		specialist.ID = uuid.NewString()
	}

	if err := s.specialists.Create(ctx, specialist); err != nil {
		s.cfg.Log.Error("Failed to create specialist", "name", specialist.Name, "error", err)
		return apperrors.Internal("Failed to create specialist", err)
	}

	s.cfg.Log.Info("Specialist created successfully", "specialist_id", specialist.ID, "name", specialist.Name)
	return nil
}

func (s *catalogService) GetSpecialistByID(ctx context.Context, id string) (*model.Specialist, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("specialist id is required")
	}

	specialist, err := s.specialists.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrSpecialistNotFound) {
			return nil, apperrors.NotFoundWithID("Specialist", id)
		}
		return nil, apperrors.Internal("Failed to get specialist", err)
	}
	return specialist, nil
}

func (s *catalogService) ListSpecialists(ctx context.Context) ([]*model.Specialist, error) {
	specialists, err := s.specialists.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list specialists", err)
	}
	return specialists, nil
}

func (s *catalogService) ListSpecialistsForService(ctx context.Context, serviceID string) ([]*model.Specialist, error) {
	if _, err := s.GetServiceByID(ctx, serviceID); err != nil {
		return nil, err
	}

	specialists, err := s.specialists.FindByService(ctx, serviceID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list specialists for service", err)
	}
	return specialists, nil
}

func (s *catalogService) UpdateSpecialist(ctx context.Context, id string, updates *model.SpecialistUpdate) (*model.Specialist, error) {
	if err := s.validator.ValidateSpecialistUpdate(updates); err != nil {
		return nil, apperrors.Validation("Specialist update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	specialist, err := s.GetSpecialistByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applySpecialistUpdate(specialist, updates)
	s.sanitizeSpecialist(specialist)

	if err := s.validator.ValidateSpecialist(specialist); err != nil {
		return nil, apperrors.Validation("Specialist validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.checkServicesExist(ctx, specialist.ServiceIDs); err != nil {
		return nil, err
	}

	if err := s.specialists.Update(ctx, specialist); err != nil {
		if errors.Is(err, catalogerrors.ErrSpecialistNotFound) {
			return nil, apperrors.NotFoundWithID("Specialist", id)
		}
		return nil, apperrors.Internal("Failed to update specialist", err)
	}

	s.cfg.Log.Info("Specialist updated successfully", "specialist_id", id)
	return specialist, nil
}

func (s *catalogService) DeleteSpecialist(ctx context.Context, id string) error {
	if _, err := s.GetSpecialistByID(ctx, id); err != nil {
		return err
	}

	count, err := s.bookings.CountActiveBySpecialist(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check bookings for specialist", err)
	}
	if count > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"Specialist has %d active booking(s) and cannot be deleted", count,
		))
	}

	if err := s.specialists.Delete(ctx, id); err != nil {
		if errors.Is(err, catalogerrors.ErrSpecialistNotFound) {
			return apperrors.NotFoundWithID("Specialist", id)
		}
		return apperrors.Internal("Failed to delete specialist", err)
	}

	s.cfg.Log.Info("Specialist deleted successfully", "specialist_id", id)
	return nil
}

func (s *catalogService) sanitizeSpecialist(specialist *model.Specialist) {
	specialist.Name = sanitizer.NormalizeName(specialist.Name)
	specialist.Specialization = sanitizer.NormalizeName(specialist.Specialization)
	specialist.ServiceIDs = sanitizer.NormalizeIDs(specialist.ServiceIDs)
}

func (s *catalogService) checkServicesExist(ctx context.Context, serviceIDs []string) error {
	for _, serviceID := range serviceIDs {
		if _, err := s.GetServiceByID(ctx, serviceID); err != nil {
			if apperrors.IsCode(err, apperrors.CodeNotFound) {
				return apperrors.Validation("Specialist references unknown service", map[string]any{
					"service_id": serviceID,
				})
			}
			return err
		}
	}
	return nil
}

func applyServiceUpdate(service *model.Service, updates *model.ServiceUpdate) {
	if updates.Name != "" {
		service.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.DurationMin != nil {
		service.DurationMin = *updates.DurationMin
	}
	if updates.Price != nil {
		service.Price = *updates.Price
	}
	if updates.BufferBeforeMin != nil {
		service.BufferBeforeMin = *updates.BufferBeforeMin
	}
	if updates.BufferAfterMin != nil {
		service.BufferAfterMin = *updates.BufferAfterMin
	}
	if updates.Description != nil {
		service.Description = *updates.Description
	}
	if updates.Icon != nil {
		service.Icon = *updates.Icon
	}
}

func applySpecialistUpdate(specialist *model.Specialist, updates *model.SpecialistUpdate) {
	if updates.Name != "" {
		specialist.Name = updates.Name
	}
	if updates.Specialization != "" {
		specialist.Specialization = updates.Specialization
	}
	if updates.Avatar != nil {
		specialist.Avatar = *updates.Avatar
	}
	if updates.WorkingHours != nil {
		specialist.WorkingHours = *updates.WorkingHours
	}
	if updates.ServiceIDs != nil {
		specialist.ServiceIDs = *updates.ServiceIDs
	}
}
