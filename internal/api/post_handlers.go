package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mommylounge/lounge-server/internal/domain"
	"github.com/mommylounge/lounge-server/internal/service"
)

func (s *Server) registerPostRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List posts",
		Description: "Returns one page of the feed, newest first, filtered by category and search text",
		Tags:        []string{"Posts"},
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/posts",
		Summary:       "Create post",
		Description:   "Publishes a post owned by the caller",
		Tags:          []string{"Posts"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
		Middlewares:   s.writeLimited(),
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPost",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Get post",
		Description: "Returns a post with its comments, newest first",
		Tags:        []string{"Posts"},
	}, s.handleGetPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePost",
		Method:      http.MethodPatch,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Update post",
		Description: "Edits title and/or content. Only the owner may edit",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePost",
		Method:      http.MethodDelete,
		Path:        "/api/v1/posts/{id}",
		Summary:     "Delete post",
		Description: "Deletes a post and its comments. Only the owner may delete",
		Tags:        []string{"Posts"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeletePost)
}

// === Request/Response Types ===

// ListPostsInput contains feed filters. Out-of-range paging values are
// normalized rather than rejected.
type ListPostsInput struct {
	Category string `query:"category" doc:"Exact category to filter by"`
	Query    string `query:"q" doc:"Case-insensitive search over title, content and comment text"`
	Page     int    `query:"page" default:"1" doc:"Page number, 1-based"`
	PageSize int    `query:"page_size" doc:"Items per page (server default when omitted)"`
}

// FeedOutput wraps a feed page for Huma.
type FeedOutput struct {
	Body *domain.FeedPage
}

// PostIDInput identifies a post.
type PostIDInput struct {
	ID string `path:"id" doc:"Post ID"`
}

// PostOutput wraps a single post for Huma.
type PostOutput struct {
	Body *domain.Post
}

// CreatePostRequest is the body for creating a post.
type CreatePostRequest struct {
	Title    string `json:"title" maxLength:"200" doc:"Post title"`
	Category string `json:"category" maxLength:"64" doc:"Post category"`
	Content  string `json:"content" maxLength:"20000" doc:"Post body"`
}

// CreatePostInput contains the create request.
type CreatePostInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          CreatePostRequest
}

// UpdatePostRequest is the body for editing a post. Omitted fields are kept.
type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty" maxLength:"200" doc:"New title"`
	Content *string `json:"content,omitempty" maxLength:"20000" doc:"New content"`
}

// UpdatePostInput contains the update request.
type UpdatePostInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Post ID"`
	Body          UpdatePostRequest
}

// UpdateResultOutput reports whether an edit changed anything.
type UpdateResultOutput struct {
	Body domain.UpdateResult
}

// DeletePostInput contains the delete request.
type DeletePostInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Post ID"`
}

// DeletedResponse confirms a deletion.
type DeletedResponse struct {
	Deleted bool `json:"deleted" doc:"Whether the resource was deleted"`
}

// DeletedOutput wraps a deletion confirmation for Huma.
type DeletedOutput struct {
	Body DeletedResponse
}

// === Handlers ===

func (s *Server) handleListPosts(ctx context.Context, input *ListPostsInput) (*FeedOutput, error) {
	page, err := s.services.Posts.ListPosts(ctx, domain.FeedQuery{
		Category: input.Category,
		Query:    input.Query,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &FeedOutput{Body: page}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.services.Posts.CreatePost(ctx, principal, service.CreatePostInput{
		Title:    input.Body.Title,
		Category: input.Body.Category,
		Content:  input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleGetPost(ctx context.Context, input *PostIDInput) (*PostOutput, error) {
	post, err := s.services.Posts.GetPost(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleUpdatePost(ctx context.Context, input *UpdatePostInput) (*UpdateResultOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Posts.UpdatePost(ctx, input.ID, principal.ID, service.UpdatePostInput{
		Title:   input.Body.Title,
		Content: input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &UpdateResultOutput{Body: *result}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *DeletePostInput) (*DeletedOutput, error) {
	principal, err := GetPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Posts.DeletePost(ctx, input.ID, principal.ID); err != nil {
		return nil, err
	}
	return &DeletedOutput{Body: DeletedResponse{Deleted: true}}, nil
}
