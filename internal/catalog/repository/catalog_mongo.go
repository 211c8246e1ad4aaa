package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	catalogerrors "slotbook/internal/catalog/errors"
	"slotbook/pkg/config"
	"slotbook/pkg/model"
)

const (
	ServicesCollection    = "Services"
	SpecialistsCollection = "Specialists"
)

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: db.Collection(ServicesCollection),
	}
}

func (r *mongoServiceRepository) Create(ctx context.Context, service *model.Service) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, service); err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var service model.Service
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &service, nil
}

func (r *mongoServiceRepository) FindAll(ctx context.Context) ([]*model.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.Service
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *mongoServiceRepository) Update(ctx context.Context, service *model.Service) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": service.ID}, service)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.MatchedCount == 0 {
		return catalogerrors.ErrServiceNotFound
	}
	return nil
}

func (r *mongoServiceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if result.DeletedCount == 0 {
		return catalogerrors.ErrServiceNotFound
	}
	return nil
}

type mongoSpecialistRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSpecialistRepository(cfg *config.Config) SpecialistRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSpecialistRepository{
		cfg:        cfg,
		collection: db.Collection(SpecialistsCollection),
	}
}

func (r *mongoSpecialistRepository) Create(ctx context.Context, specialist *model.Specialist) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, specialist); err != nil {
		return fmt.Errorf("failed to create specialist: %w", err)
	}
	return nil
}

func (r *mongoSpecialistRepository) FindByID(ctx context.Context, id string) (*model.Specialist, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var specialist model.Specialist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&specialist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrSpecialistNotFound
		}
		return nil, fmt.Errorf("failed to find specialist: %w", err)
	}
	return &specialist, nil
}

func (r *mongoSpecialistRepository) FindAll(ctx context.Context) ([]*model.Specialist, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoSpecialistRepository) FindByService(ctx context.Context, serviceID string) ([]*model.Specialist, error) {
	return r.find(ctx, bson.M{"service_ids": serviceID})
}

func (r *mongoSpecialistRepository) find(ctx context.Context, filter bson.M) ([]*model.Specialist, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find specialists: %w", err)
	}
	defer cursor.Close(ctx)

	var specialists []*model.Specialist
	if err = cursor.All(ctx, &specialists); err != nil {
		return nil, fmt.Errorf("failed to decode specialists: %w", err)
	}
	return specialists, nil
}

func (r *mongoSpecialistRepository) Update(ctx context.Context, specialist *model.Specialist) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": specialist.ID}, specialist)
	if err != nil {
		return fmt.Errorf("failed to update specialist: %w", err)
	}
	if result.MatchedCount == 0 {
		return catalogerrors.ErrSpecialistNotFound
	}
	return nil
}

func (r *mongoSpecialistRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete specialist: %w", err)
	}
	if result.DeletedCount == 0 {
		return catalogerrors.ErrSpecialistNotFound
	}
	return nil
}
