package mongo

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const themeCollectionName = "themes"

type mongoThemeRepository struct {
	collection *mongo.Collection
}

func NewMongoThemeRepository(db *mongo.Database) repository.ThemeRepository {
	return &mongoThemeRepository{collection: db.Collection(themeCollectionName)}
}

func (r *mongoThemeRepository) Create(ctx context.Context, theme *domain.Theme) (primitive.ObjectID, error) {
	theme.ID = primitive.NewObjectID()
	theme.CreatedAt = time.Now().UTC()
	return insert(ctx, r.collection, theme)
}

func (r *mongoThemeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Theme, error) {
	var theme domain.Theme
	if err := findOne(ctx, r.collection, bson.M{"_id": id}, &theme); err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *mongoThemeRepository) List(ctx context.Context) ([]domain.Theme, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "hexColor", Value: 1}}))
	if err != nil {
		return nil, err
	}
	themes := []domain.Theme{}
	if err := findAll(ctx, cursor, &themes); err != nil {
		return nil, err
	}
	return themes, nil
}

func (r *mongoThemeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, bson.M{"_id": id})
}

func EnsureThemeIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hexColor", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
