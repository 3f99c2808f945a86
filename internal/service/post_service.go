// Package service implements the post mutation rules on top of the stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"devconnect/internal/models"
	"devconnect/internal/observability"
	"devconnect/internal/repository"
)

// PostService applies create, delete, like and comment operations to posts.
//
// Mutations are read-modify-write against the store without version checks,
// so two concurrent mutations of one post can lose an update.
type PostService struct {
	posts repository.PostRepository
	users repository.UserRepository
	now   func() time.Time
	newID func() string
}

type CreatePostInput struct {
	UserID string
	Text   string
}

type DeletePostInput struct {
	UserID string
	PostID string
}

type AddCommentInput struct {
	UserID string
	PostID string
	Text   string
}

type DeleteCommentInput struct {
	UserID    string
	PostID    string
	CommentID string
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository) *PostService {
	return &PostService{
		posts: posts,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// begin opens a span for op and returns the function that closes it and
// records the outcome.
func (s *PostService) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := observability.StartSpan(ctx, "PostService", op, attrs...)
	return ctx, func(err error) {
		outcome := observability.Outcome(err)
		observability.RecordPostOperation(op, err)
		span.SetAttributes(attribute.String("outcome", outcome))
		if outcome == models.CodeInternal {
			observability.EndSpan(span, err)
			return
		}
		span.End()
	}
}

func validateText(text string) error {
	if text == "" {
		return models.NewValidationError("text", "Text is required")
	}
	return nil
}

func (s *PostService) load(ctx context.Context, postID string) (*models.Post, error) {
	res := s.posts.FindByID(ctx, postID)
	switch res.Status {
	case repository.LookupFound:
		return res.Post, nil
	case repository.LookupNotFound:
		return nil, models.NewPostNotFoundError()
	default:
		return nil, models.NewInternalError(res.Err)
	}
}

func (s *PostService) save(ctx context.Context, post *models.Post) error {
	err := s.posts.Save(ctx, post)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrPostNotFound):
		return models.NewPostNotFoundError()
	default:
		return models.NewInternalError(err)
	}
}

// profile loads the author snapshot. An unknown author is a server-side
// inconsistency, not a client error.
func (s *PostService) profile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("load profile %s: %w", userID, err))
	}
	return p, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, done := s.begin(ctx, "create_post")
	defer func() { done(err) }()

	if err := validateText(in.Text); err != nil {
		return nil, err
	}

	author, err := s.profile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post = &models.Post{
		ID:        s.newID(),
		UserID:    in.UserID,
		Text:      in.Text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: s.now(),
	}
	post.Normalize()

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context) (posts []*models.Post, err error) {
	ctx, done := s.begin(ctx, "list_posts")
	defer func() { done(err) }()

	posts, err = s.posts.FindAll(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (post *models.Post, err error) {
	ctx, done := s.begin(ctx, "get_post", attribute.String("post.id", postID))
	defer func() { done(err) }()

	return s.load(ctx, postID)
}

// DeletePost removes a post owned by the caller.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (err error) {
	ctx, done := s.begin(ctx, "delete_post", attribute.String("post.id", in.PostID))
	defer func() { done(err) }()

	post, err := s.load(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.NewUnauthorizedError("User not authorized")
	}

	err = s.posts.Delete(ctx, in.PostID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrPostNotFound):
		return models.NewPostNotFoundError()
	default:
		return models.NewInternalError(err)
	}
}

// LikePost adds the caller's like and returns the updated likes, newest first.
func (s *PostService) LikePost(ctx context.Context, userID, postID string) (likes []models.Like, err error) {
	ctx, done := s.begin(ctx, "like_post", attribute.String("post.id", postID))
	defer func() { done(err) }()

	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.LikedBy(userID) {
		return nil, models.NewAlreadyLikedError()
	}

	post.AddLike(userID)
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// UnlikePost removes the caller's like and returns the remaining likes.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID string) (likes []models.Like, err error) {
	ctx, done := s.begin(ctx, "unlike_post", attribute.String("post.id", postID))
	defer func() { done(err) }()

	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.RemoveLike(userID) {
		return nil, models.NewNotLikedError()
	}

	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// AddComment prepends a comment by the caller and returns all comments.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) (comments []models.Comment, err error) {
	ctx, done := s.begin(ctx, "add_comment", attribute.String("post.id", in.PostID))
	defer func() { done(err) }()

	if err := validateText(in.Text); err != nil {
		return nil, err
	}

	post, err := s.load(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	author, err := s.profile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post.AddComment(models.Comment{
		ID:        s.newID(),
		UserID:    in.UserID,
		Text:      in.Text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: s.now(),
	})
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// DeleteComment removes a comment written by the caller and returns the
// remaining comments.
func (s *PostService) DeleteComment(ctx context.Context, in DeleteCommentInput) (comments []models.Comment, err error) {
	ctx, done := s.begin(ctx, "delete_comment",
		attribute.String("post.id", in.PostID),
		attribute.String("comment.id", in.CommentID),
	)
	defer func() { done(err) }()

	post, err := s.load(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	comment := post.FindComment(in.CommentID)
	if comment == nil {
		return nil, models.NewCommentNotFoundError()
	}
	if comment.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("User not authorized")
	}

	// Match on id and author together so that only the caller's own entry goes.
	post.RemoveComment(in.CommentID, in.UserID)
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post.Comments, nil
}
