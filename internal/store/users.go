package store

import (
	"context"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mommylounge/lounge-server/internal/domain"
	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
)

// TouchUser records that a principal was seen, creating the directory entry
// on first contact. A blank display name leaves the stored one alone.
func (s *Store) TouchUser(ctx context.Context, p domain.Principal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.timestamp()
	set := bson.M{"last_seen_at": now}
	setOnInsert := bson.M{"created_at": now, "bio": ""}
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		set["display_name"] = name
	} else {
		setOnInsert["display_name"] = ""
	}

	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	return wrapErr(err, "touch user")
}

// GetUser loads a directory entry.
func (s *Store) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc userDocument
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domainerrors.NotFoundf("user %s not found", userID)
		}
		return nil, wrapErr(err, "get user")
	}
	return doc.toDomain(), nil
}

// UpdateBio sets the bio of an existing or new directory entry.
func (s *Store) UpdateBio(ctx context.Context, p domain.Principal, bio string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.timestamp()
	set := bson.M{"bio": bio, "last_seen_at": now}
	setOnInsert := bson.M{"created_at": now}
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		set["display_name"] = name
	} else {
		setOnInsert["display_name"] = ""
	}

	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	return wrapErr(err, "update bio")
}

// DisplayNames looks up display names for the given ids in one query.
// Ids without an entry or with a blank name are absent from the result.
func (s *Store) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	ids = slices.DeleteFunc(ids, func(s string) bool { return s == "" })

	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cursor, err := s.users.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"display_name": 1}),
	)
	if err != nil {
		return nil, wrapErr(err, "resolve display names")
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapErr(err, "decode display names")
	}

	for _, d := range docs {
		if d.DisplayName != "" {
			names[d.ID] = d.DisplayName
		}
	}
	return names, nil
}
