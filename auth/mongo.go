package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"nstore-backend/models"
)

const (
	adminsCollection   = "admins"
	sessionsCollection = "sessions"
)

// MongoService menyimpan admin dan sesi aktif di MongoDB. Setiap instance
// storefront memegang satu sesi yang dikunci dengan ClientID. Perubahan
// sesi dari instance lain diterima lewat change stream.
type MongoService struct {
	DB       *mongo.Database
	ClientID string

	tokens *Tokens
	hub    *hub
	log    *slog.Logger

	watchOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

type adminDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"created_at"`
}

type sessionDocument struct {
	ClientID  string    `bson:"_id"`
	Token     string    `bson:"token"`
	AdminID   string    `bson:"admin_id"`
	Email     string    `bson:"email"`
	IssuedAt  time.Time `bson:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func NewMongoService(db *mongo.Database, clientID string, tokens *Tokens, logger *slog.Logger) *MongoService {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MongoService{
		DB:       db,
		ClientID: clientID,
		tokens:   tokens,
		hub:      newHub(),
		log:      logger.With("component", "auth"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// EnsureIndexes membuat indeks unik untuk email admin.
func (s *MongoService) EnsureIndexes(ctx context.Context) error {
	_, err := s.DB.Collection(adminsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating admin indexes: %w", err)
	}
	return nil
}

// CreateAdmin menangani registrasi admin baru.
func (s *MongoService) CreateAdmin(ctx context.Context, email, password string) (*models.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	collection := s.DB.Collection(adminsCollection)

	var existing adminDocument
	err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&existing)
	if err == nil {
		return nil, ErrAdminExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	doc := adminDocument{Email: email, Password: string(hashedPassword), CreatedAt: time.Now().UTC()}
	result, err := collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAdminExists
		}
		return nil, err
	}

	return &models.Admin{
		ID:        result.InsertedID.(primitive.ObjectID).Hex(),
		Email:     email,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (s *MongoService) CurrentSession(ctx context.Context) (*models.Session, error) {
	var doc sessionDocument
	err := s.DB.Collection(sessionsCollection).FindOne(ctx, bson.M{"_id": s.ClientID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	session, err := s.tokens.Parse(doc.Token)
	if err != nil {
		s.log.Info("stored session discarded", "error", err)
		return nil, nil
	}
	s.hub.arm(session)
	return session, nil
}

// Subscribe mendaftarkan fn dan, pada panggilan pertama, mulai mengikuti
// change stream koleksi sesi.
func (s *MongoService) Subscribe(fn func(*models.Session)) func() {
	unsubscribe := s.hub.subscribe(fn)
	s.watchOnce.Do(func() { go s.watch() })
	return unsubscribe
}

func (s *MongoService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var doc adminDocument
	err := s.DB.Collection(adminsCollection).FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(doc.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.tokens.Issue(models.Admin{ID: doc.ID.Hex(), Email: doc.Email})
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"token":      session.Token,
		"admin_id":   session.AdminID,
		"email":      session.Email,
		"issued_at":  session.IssuedAt,
		"expires_at": session.ExpiresAt,
	}}
	_, err = s.DB.Collection(sessionsCollection).UpdateOne(ctx, bson.M{"_id": s.ClientID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	s.hub.publish(session)
	return session, nil
}

func (s *MongoService) SignOut(ctx context.Context) error {
	if _, err := s.DB.Collection(sessionsCollection).DeleteOne(ctx, bson.M{"_id": s.ClientID}); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	s.hub.publish(nil)
	return nil
}

// watch re-reads the session whenever its document changes. Standalone
// MongoDB servers do not support change streams; local pushes still work
// in that case.
func (s *MongoService) watch() {
	defer close(s.done)

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: s.ClientID}}}}}
	stream, err := s.DB.Collection(sessionsCollection).Watch(s.ctx, pipeline)
	if err != nil {
		if s.ctx.Err() == nil {
			s.log.Warn("session change stream unavailable, using local notifications only", "error", err)
		}
		return
	}
	defer stream.Close(context.Background())

	for stream.Next(s.ctx) {
		ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		session, err := s.CurrentSession(ctx)
		cancel()
		if err != nil {
			s.log.Warn("reloading session after change failed", "error", err)
			continue
		}
		s.hub.publish(session)
	}
	if err := stream.Err(); err != nil && s.ctx.Err() == nil {
		s.log.Warn("session change stream closed", "error", err)
	}
}

// Close menghentikan change stream dan timer kedaluwarsa.
func (s *MongoService) Close() error {
	s.cancel()
	s.hub.stop()
	s.watchOnce.Do(func() { close(s.done) })

	select {
	case <-s.done:
		return nil
	case <-time.After(5 * time.Second):
		return errors.New("session watcher did not stop")
	}
}
