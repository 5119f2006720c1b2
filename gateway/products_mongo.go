package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nstore-backend/models"
)

const productsCollection = "products"

// MongoProducts menyimpan produk di koleksi "products".
type MongoProducts struct {
	DB  *mongo.Database
	now func() time.Time
}

func NewMongoProducts(db *mongo.Database) *MongoProducts {
	return &MongoProducts{DB: db, now: time.Now}
}

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Category    string             `bson:"category"`
	Price       int64              `bson:"price"`
	Description string             `bson:"description"`
	Status      models.Status      `bson:"status"`
	Images      []string           `bson:"images"`
	Thumbnail   *string            `bson:"thumbnail"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d productDocument) product() models.Product {
	images := d.Images
	if images == nil {
		images = []string{}
	}
	return models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    d.Category,
		Price:       d.Price,
		Description: d.Description,
		Status:      d.Status,
		Images:      images,
		Thumbnail:   d.Thumbnail,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// EnsureIndexes membuat indeks untuk urutan default dan filter status.
func (s *MongoProducts) EnsureIndexes(ctx context.Context) error {
	_, err := s.DB.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating product indexes: %w", err)
	}
	return nil
}

func (s *MongoProducts) List(ctx context.Context, includeSold bool) ([]models.Product, error) {
	filter := bson.M{}
	if !includeSold {
		filter["status"] = models.StatusReady
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.DB.Collection(productsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	productList := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		productList = append(productList, d.product())
	}
	return productList, nil
}

func (s *MongoProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc productDocument
	err = s.DB.Collection(productsCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p := doc.product()
	return &p, nil
}

func (s *MongoProducts) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	now := s.now().UTC()
	doc := productDocument{
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Description: in.Description,
		Status:      in.Status,
		Images:      in.Images,
		Thumbnail:   in.Thumbnail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result, err := s.DB.Collection(productsCollection).InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)
	p := doc.product()
	return &p, nil
}

func (s *MongoProducts) Update(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":        in.Name,
		"category":    in.Category,
		"price":       in.Price,
		"description": in.Description,
		"status":      in.Status,
		"images":      in.Images,
		"thumbnail":   in.Thumbnail,
		"updated_at":  s.now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err = s.DB.Collection(productsCollection).FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p := doc.product()
	return &p, nil
}

func (s *MongoProducts) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.DB.Collection(productsCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
