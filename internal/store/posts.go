package store

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/id"
)

// CreatePost inserts a new post. ID, CreatedAt and Revision are assigned here
// and written back into p.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := postDocument{
		ID:               id.NewObjectID(),
		OwnerID:          p.OwnerID,
		OwnerDisplayName: p.OwnerDisplayName,
		Title:            p.Title,
		Category:         p.Category,
		Content:          p.Content,
		CreatedAt:        s.timestamp(),
		Comments:         []commentDocument{},
	}

	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return wrapErr(err, "create post")
	}

	p.ID = doc.ID.Hex()
	p.CreatedAt = doc.CreatedAt
	p.Comments = []domain.Comment{}
	p.Revision = 0

	s.logger.Debug("post created", "post_id", p.ID, "owner_id", p.OwnerID)
	return nil
}

// GetPost loads a post with its comments.
func (s *Store) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	oid, err := id.ParseObjectID("post", postID)
	if err != nil {
		return nil, err
	}
	return s.getPost(ctx, oid)
}

func (s *Store) getPost(ctx context.Context, oid primitive.ObjectID) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc postDocument
	if err := s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domainerrors.NotFoundf("post %s not found", oid.Hex())
		}
		return nil, wrapErr(err, "get post")
	}
	return doc.toDomain(), nil
}

// ListPosts returns one page of the feed and the size of the filtered set.
// q must already be normalized.
// The embedded engine has no $regex, so text search there runs over the
// category-filtered set in process.
func (s *Store) ListPosts(ctx context.Context, q domain.FeedQuery) ([]domain.Post, int, error) {
	if s.engine != nil && q.Normalize(0, 0).Query != "" {
		return s.searchPosts(ctx, q)
	}
	return s.findPosts(ctx, FeedFilter(q), q)
}

// ListPostsByOwner returns one page of a user's posts, newest first.
func (s *Store) ListPostsByOwner(ctx context.Context, ownerID string, q domain.FeedQuery) ([]domain.Post, int, error) {
	return s.findPosts(ctx, bson.D{{Key: "owner_id", Value: ownerID}}, q)
}

func (s *Store) findPosts(ctx context.Context, filter bson.D, q domain.FeedQuery) ([]domain.Post, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	total, err := s.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapErr(err, "count posts")
	}

	cursor, err := s.posts.Find(ctx, filter, FeedFindOptions(q))
	if err != nil {
		return nil, 0, wrapErr(err, "list posts")
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, wrapErr(err, "decode posts")
	}

	posts := make([]domain.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, *docs[i].toDomain())
	}
	return posts, int(total), nil
}

// searchPosts filters by category in the store, matches the search text
// against every candidate, then counts and pages the matches.
func (s *Store) searchPosts(ctx context.Context, q domain.FeedQuery) ([]domain.Post, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	filter := q.Normalize(0, 0)
	cursor, err := s.posts.Find(ctx, categoryFilter(filter), options.Find().SetSort(feedSort))
	if err != nil {
		return nil, 0, wrapErr(err, "search posts")
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, wrapErr(err, "decode posts")
	}

	needle := strings.ToLower(filter.Query)
	matched := docs[:0]
	for i := range docs {
		if docs[i].matchesSearch(needle) {
			matched = append(matched, docs[i])
		}
	}

	start, end := pageWindow(q, len(matched))
	posts := make([]domain.Post, 0, end-start)
	for i := start; i < end; i++ {
		posts = append(posts, *matched[i].toDomain())
	}
	return posts, len(matched), nil
}

// UpdatePost sets title and content on a post owned by callerID.
// The owner is part of the filter, so a concurrent ownership change can never
// let a non-owner write. A zero match is re-diagnosed into NotFound or Forbidden.
func (s *Store) UpdatePost(ctx context.Context, postID, callerID, title, content string) error {
	oid, err := id.ParseObjectID("post", postID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": oid, "owner_id": callerID},
		bson.M{
			"$set": bson.M{"title": title, "content": content, "updated_at": s.timestamp()},
			"$inc": bson.M{"revision": 1},
		},
	)
	if err != nil {
		return wrapErr(err, "update post")
	}
	if res.MatchedCount == 0 {
		return s.diagnosePostWrite(ctx, oid, "edit")
	}
	return nil
}

// DeletePost removes a post owned by callerID, comments included.
func (s *Store) DeletePost(ctx context.Context, postID, callerID string) error {
	oid, err := id.ParseObjectID("post", postID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": callerID})
	if err != nil {
		return wrapErr(err, "delete post")
	}
	if res.DeletedCount == 0 {
		return s.diagnosePostWrite(ctx, oid, "delete")
	}

	s.logger.Debug("post deleted", "post_id", postID, "owner_id", callerID)
	return nil
}

// diagnosePostWrite explains why an owner-scoped write matched nothing.
func (s *Store) diagnosePostWrite(ctx context.Context, oid primitive.ObjectID, verb string) error {
	if _, err := s.getPost(ctx, oid); err != nil {
		return err
	}
	return domainerrors.Forbiddenf("only the owner can %s this post", verb)
}
