package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}/comments",
		Summary:     "List comments",
		Description: "Returns a post's comments, newest first",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts/{id}/comments",
		Summary:       "Add comment",
		Description:   "Comments on a post and notifies its owner",
		Tags:          []string{"Comments"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   s.writeLimited(),
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "editComment",
		Method:      http.MethodPatch,
		Path:        "/api/v1/posts/{id}/comments/{commentId}",
		Summary:     "Edit comment",
		Description: "Replaces a comment's text. Only the author may edit",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEditComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/posts/{id}/comments/{commentId}",
		Summary:     "Delete comment",
		Description: "Removes a comment. Only the author may delete; deleting a missing comment is a no-op",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

// === Request/Response Types ===

// CommentListOutput wraps a post's comments for Huma.
type CommentListOutput struct {
	Body []domain.Comment
}

// CommentRequest is the body for creating or editing a comment.
type CommentRequest struct {
	Text string `json:"text" maxLength:"5000" doc:"Comment text"`
}

// AddCommentInput contains the create request.
type AddCommentInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Post ID"`
	Body          CommentRequest
}

// CommentOutput wraps a single comment for Huma.
type CommentOutput struct {
	Body *domain.Comment
}

// EditCommentInput contains the edit request.
type EditCommentInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Post ID"`
	CommentID     string `path:"commentId" doc:"Comment ID"`
	Body          CommentRequest
}

// DeleteCommentInput contains the delete request.
type DeleteCommentInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Post ID"`
	CommentID     string `path:"commentId" doc:"Comment ID"`
}

// DeleteResultOutput reports whether a comment was removed.
type DeleteResultOutput struct {
	Body domain.DeleteResult
}

// === Handlers ===

func (s *Server) handleListComments(ctx context.Context, input *PostIDInput) (*CommentListOutput, error) {
	comments, err := s.services.Comments.ListComments(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CommentListOutput{Body: comments}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comments.AddComment(ctx, input.ID, principal, service.CommentInput{Text: input.Body.Text})
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleEditComment(ctx context.Context, input *EditCommentInput) (*UpdateResultOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Comments.EditComment(ctx, input.ID, principal.ID, input.CommentID, service.CommentInput{Text: input.Body.Text})
	if err != nil {
		return nil, err
	}
	return &UpdateResultOutput{Body: *result}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *DeleteCommentInput) (*DeleteResultOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Comments.DeleteComment(ctx, input.ID, principal.ID, input.CommentID)
	if err != nil {
		return nil, err
	}
	return &DeleteResultOutput{Body: *result}, nil
}
