package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
	"github.com/mommylounge/lounge-server/internal/id"
)

// AddComment appends c to the post's comment array and returns the post as it
// is after the write. The comment ID and timestamp are assigned here.
func (s *Store) AddComment(ctx context.Context, postID string, c *domain.Comment) (*domain.Post, error) {
	oid, err := id.ParseObjectID("post", postID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := commentDocument{
		ID:                id.NewObjectID(),
		AuthorID:          c.AuthorID,
		AuthorDisplayName: c.AuthorDisplayName,
		Text:              c.Text,
		Timestamp:         s.timestamp(),
	}

	var updated postDocument
	err = s.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"comments": doc},
			"$inc":  bson.M{"revision": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if isNoDocuments(err) {
			return nil, domainerrors.NotFoundf("post %s not found", postID)
		}
		return nil, wrapErr(err, "add comment")
	}

	*c = doc.toDomain()
	s.logger.Debug("comment added", "post_id", postID, "comment_id", c.ID)
	return updated.toDomain(), nil
}

// ReplaceComments swaps the whole comment array if the post is still at
// expectedRevision. It reports false when another writer got there first.
func (s *Store) ReplaceComments(ctx context.Context, postID string, expectedRevision int64, comments []domain.Comment) (bool, error) {
	oid, err := id.ParseObjectID("post", postID)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	docs := make([]commentDocument, 0, len(comments))
	for _, c := range comments {
		doc, err := commentFromDomain(c)
		if err != nil {
			return false, domainerrors.Internalf("stored comment has invalid id %q", c.ID).WithCause(err)
		}
		docs = append(docs, doc)
	}

	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": oid, "revision": expectedRevision},
		bson.M{
			"$set": bson.M{"comments": docs},
			"$inc": bson.M{"revision": 1},
		},
	)
	if err != nil {
		return false, wrapErr(err, "replace comments")
	}
	return res.MatchedCount == 1, nil
}

// RemoveComment pulls a comment authored by authorID. It reports whether
// anything was removed. The author is part of the match, so a non-author can
// never remove the comment even under a race.
func (s *Store) RemoveComment(ctx context.Context, postID, commentID, authorID string) (bool, error) {
	oid, err := id.ParseObjectID("post", postID)
	if err != nil {
		return false, err
	}
	cid, err := id.ParseObjectID("comment", commentID)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	match := bson.M{"_id": cid, "author_id": authorID}
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": oid, "comments": bson.M{"$elemMatch": match}},
		bson.M{
			"$pull": bson.M{"comments": match},
			"$inc":  bson.M{"revision": 1},
		},
	)
	if err != nil {
		return false, wrapErr(err, "remove comment")
	}
	return res.MatchedCount == 1, nil
}
