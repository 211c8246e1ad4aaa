package repository

import (
	"context"

	"slotbook/pkg/model"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *model.Service) error
	FindByID(ctx context.Context, id string) (*model.Service, error)
	FindAll(ctx context.Context) ([]*model.Service, error)
	Update(ctx context.Context, service *model.Service) error
	Delete(ctx context.Context, id string) error
}

type SpecialistRepository interface {
	Create(ctx context.Context, specialist *model.Specialist) error
	FindByID(ctx context.Context, id string) (*model.Specialist, error)
	FindAll(ctx context.Context) ([]*model.Specialist, error)
	FindByService(ctx context.Context, serviceID string) ([]*model.Specialist, error)
	Update(ctx context.Context, specialist *model.Specialist) error
	Delete(ctx context.Context, id string) error
}
