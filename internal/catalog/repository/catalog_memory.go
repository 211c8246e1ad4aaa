package repository

import (
	"context"
	"sort"
	"sync"

	catalogerrors "slotbook/internal/catalog/errors"
	"slotbook/pkg/model"
)

// memoryServiceRepository backs the catalog with a plain map, for tests
// and local runs without mongo.
type memoryServiceRepository struct {
	mu       sync.RWMutex
	services map[string]*model.Service
}

func NewMemoryServiceRepository() ServiceRepository {
	return &memoryServiceRepository{
		services: make(map[string]*model.Service),
	}
}

func (r *memoryServiceRepository) Create(_ context.Context, service *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *service
	r.services[service.ID] = &copied
	return nil
}

func (r *memoryServiceRepository) FindByID(_ context.Context, id string) (*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, ok := r.services[id]
	if !ok {
		return nil, catalogerrors.ErrServiceNotFound
	}
	copied := *service
	return &copied, nil
}

func (r *memoryServiceRepository) FindAll(_ context.Context) ([]*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]*model.Service, 0, len(r.services))
	for _, service := range r.services {
		copied := *service
		services = append(services, &copied)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

func (r *memoryServiceRepository) Update(_ context.Context, service *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[service.ID]; !ok {
		return catalogerrors.ErrServiceNotFound
	}
	copied := *service
	r.services[service.ID] = &copied
	return nil
}

func (r *memoryServiceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[id]; !ok {
		return catalogerrors.ErrServiceNotFound
	}
	delete(r.services, id)
	return nil
}

type memorySpecialistRepository struct {
	mu          sync.RWMutex
	specialists map[string]*model.Specialist
}

func NewMemorySpecialistRepository() SpecialistRepository {
	return &memorySpecialistRepository{
		specialists: make(map[string]*model.Specialist),
	}
}

func (r *memorySpecialistRepository) Create(_ context.Context, specialist *model.Specialist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.specialists[specialist.ID] = copySpecialist(specialist)
	return nil
}

func (r *memorySpecialistRepository) FindByID(_ context.Context, id string) (*model.Specialist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specialist, ok := r.specialists[id]
	if !ok {
		return nil, catalogerrors.ErrSpecialistNotFound
	}
	return copySpecialist(specialist), nil
}

func (r *memorySpecialistRepository) FindAll(_ context.Context) ([]*model.Specialist, error) {
	return r.find(func(*model.Specialist) bool { return true })
}

func (r *memorySpecialistRepository) FindByService(_ context.Context, serviceID string) ([]*model.Specialist, error) {
	return r.find(func(s *model.Specialist) bool { return s.PerformsService(serviceID) })
}

func (r *memorySpecialistRepository) find(match func(*model.Specialist) bool) ([]*model.Specialist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var specialists []*model.Specialist
	for _, specialist := range r.specialists {
		if match(specialist) {
			specialists = append(specialists, copySpecialist(specialist))
		}
	}
	sort.Slice(specialists, func(i, j int) bool { return specialists[i].Name < specialists[j].Name })
	return specialists, nil
}

func (r *memorySpecialistRepository) Update(_ context.Context, specialist *model.Specialist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specialists[specialist.ID]; !ok {
		return catalogerrors.ErrSpecialistNotFound
	}
	r.specialists[specialist.ID] = copySpecialist(specialist)
	return nil
}

func (r *memorySpecialistRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specialists[id]; !ok {
		return catalogerrors.ErrSpecialistNotFound
	}
	delete(r.specialists, id)
	return nil
}

func copySpecialist(s *model.Specialist) *model.Specialist {
	copied := *s
	if s.WorkingHours != nil {
		copied.WorkingHours = make(map[string]*model.DayHours, len(s.WorkingHours))
		for day, hours := range s.WorkingHours {
			if hours == nil {
				copied.WorkingHours[day] = nil
				continue
			}
			h := *hours
			copied.WorkingHours[day] = &h
		}
	}
	copied.ServiceIDs = append([]string(nil), s.ServiceIDs...)
	return &copied
}
