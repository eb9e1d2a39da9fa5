package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`

	Username     string `bson:"username"`
	Email        string `bson:"email"`
	FullName     string `bson:"fullName"`
	Avatar       string `bson:"avatar"`
	CoverImage   string `bson:"coverImage"`
	Password     string `bson:"password"`
	RefreshToken string `bson:"refreshToken,omitempty"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		Avatar:       d.Avatar,
		CoverImage:   d.CoverImage,
		Password:     d.Password,
		RefreshToken: d.RefreshToken,
	}
}

// Mongo stores users in the "users" collection.
type Mongo struct {
	col *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{col: db.Collection(usersCollection)}
}

// EnsureIndexes configures unique indexes on username and email.
// Called on startup from main after Mongo has connected.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("uniq_username").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	}
	if _, err := s.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *Mongo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		Password:     u.Password,
		RefreshToken: u.RefreshToken,
	}
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toModel(), nil
}

func (s *Mongo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *Mongo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, ErrNotFound
	}
	// oldest match wins when username and email point at different users
	return s.findOne(ctx, bson.M{"$or": or}, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (s *Mongo) SetRefreshToken(ctx context.Context, id, token string) (*models.User, error) {
	if token == "" {
		return s.updateByID(ctx, id, bson.M{
			"$unset": bson.M{"refreshToken": 1},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		})
	}
	return s.set(ctx, id, bson.M{"refreshToken": token})
}

func (s *Mongo) SetPassword(ctx context.Context, id, hash string) (*models.User, error) {
	return s.set(ctx, id, bson.M{"password": hash})
}

func (s *Mongo) UpdateDetails(ctx context.Context, id string, fullName, email *string) (*models.User, error) {
	fields := bson.M{}
	if fullName != nil {
		fields["fullName"] = *fullName
	}
	if email != nil {
		fields["email"] = *email
	}
	return s.set(ctx, id, fields)
}

func (s *Mongo) SetAvatar(ctx context.Context, id, url string) (*models.User, error) {
	return s.set(ctx, id, bson.M{"avatar": url})
}

func (s *Mongo) SetCoverImage(ctx context.Context, id, url string) (*models.User, error) {
	return s.set(ctx, id, bson.M{"coverImage": url})
}

func (s *Mongo) set(ctx context.Context, id string, fields bson.M) (*models.User, error) {
	fields["updatedAt"] = time.Now().UTC()
	return s.updateByID(ctx, id, bson.M{"$set": fields})
}

func (s *Mongo) updateByID(ctx context.Context, id string, update bson.M) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err = s.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toModel(), nil
}

func (s *Mongo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.User, error) {
	var doc userDocument
	if err := s.col.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel(), nil
}
