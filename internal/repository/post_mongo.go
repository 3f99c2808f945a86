package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"devconnect/internal/models"
	"devconnect/internal/observability"
)

const (
	postsCollection = "posts"
	mongoStore      = "mongo"
)

// mongoPostRepository keeps each post, with its likes and comments, in one document.
type mongoPostRepository struct {
	coll *mongo.Collection
}

// idFilter matches a document by id. Documents written by older services
// carry ObjectID ids, which reach clients as hex strings, so a hex id matches
// either form.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

// NewMongoPostRepository creates a post repository backed by the posts collection of db.
func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{coll: db.Collection(postsCollection)}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.ObserveStoreQuery(mongoStore, "create_post", time.Now())

	post.Normalize()
	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *mongoPostRepository) FindByID(ctx context.Context, id string) PostLookup {
	defer observability.ObserveStoreQuery(mongoStore, "find_post", time.Now())

	var post models.Post
	err := r.coll.FindOne(ctx, idFilter(id)).Decode(&post)
	switch {
	case err == nil:
		post.Normalize()
		return Found(&post)
	case errors.Is(err, mongo.ErrNoDocuments):
		return NotFound()
	default:
		return Failed(fmt.Errorf("find post %s: %w", id, err))
	}
}

func (r *mongoPostRepository) FindAll(ctx context.Context) ([]*models.Post, error) {
	defer observability.ObserveStoreQuery(mongoStore, "list_posts", time.Now())

	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]*models.Post, 0)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for _, p := range posts {
		p.Normalize()
	}
	return posts, nil
}

func (r *mongoPostRepository) Save(ctx context.Context, post *models.Post) error {
	defer observability.ObserveStoreQuery(mongoStore, "save_post", time.Now())

	post.Normalize()
	res, err := r.coll.UpdateOne(ctx,
		idFilter(post.ID),
		bson.M{"$set": bson.M{"likes": post.Likes, "comments": post.Comments}},
	)
	if err != nil {
		return fmt.Errorf("update post %s: %w", post.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, id string) error {
	defer observability.ObserveStoreQuery(mongoStore, "delete_post", time.Now())

	res, err := r.coll.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *mongoPostRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
