package server

import (
	"github.com/gofiber/fiber/v2"

	"devconnect/internal/middleware"
	"devconnect/internal/models"
	"devconnect/internal/notifications"
	"devconnect/internal/service"
)

type textRequest struct {
	Text string `json:"text" form:"text"`
}

// parseText reads the text field of the body. An unreadable body counts as
// an empty text and fails validation downstream.
func parseText(c *fiber.Ctx) string {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return ""
	}
	return req.Text
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID: userID,
		Text:   parseText(c),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(ctx, notifications.EventPostCreated, map[string]any{
		"post_id": post.ID,
		"user_id": userID,
	})
	return c.JSON(post)
}

// ListPosts handles GET /api/posts
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	postID := c.Params("id")

	if err := s.postService.DeletePost(ctx, service.DeletePostInput{UserID: userID, PostID: postID}); err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(ctx, notifications.EventPostDeleted, map[string]any{
		"post_id": postID,
		"user_id": userID,
	})
	return c.JSON(fiber.Map{"msg": "Post removed"})
}

// LikePost handles PUT /api/posts/like/:id
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	postID := c.Params("id")

	likes, err := s.postService.LikePost(ctx, userID, postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(ctx, notifications.EventPostLiked, map[string]any{
		"post_id":     postID,
		"user_id":     userID,
		"likes_count": len(likes),
	})
	return c.JSON(likes)
}

// UnlikePost handles PUT /api/posts/unlike/:id
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	postID := c.Params("id")

	likes, err := s.postService.UnlikePost(ctx, userID, postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(ctx, notifications.EventPostUnliked, map[string]any{
		"post_id":     postID,
		"user_id":     userID,
		"likes_count": len(likes),
	})
	return c.JSON(likes)
}

// AddComment handles POST /api/posts/comment/:id
func (s *Server) AddComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	postID := c.Params("id")

	comments, err := s.postService.AddComment(ctx, service.AddCommentInput{
		UserID: userID,
		PostID: postID,
		Text:   parseText(c),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(ctx, notifications.EventCommentCreated, map[string]any{
		"post_id":    postID,
		"comment_id": comments[0].ID,
		"user_id":    userID,
	})
	return c.JSON(comments)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:comment_id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := middleware.UserID(c)
	postID := c.Params("id")
	commentID := c.Params("comment_id")

	comments, err := s.postService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    userID,
		PostID:    postID,
		CommentID: commentID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	s.publishPostEvent(ctx, notifications.EventCommentDeleted, map[string]any{
		"post_id":    postID,
		"comment_id": commentID,
		"user_id":    userID,
	})
	return c.JSON(comments)
}
