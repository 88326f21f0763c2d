// Package dto fills display fields on domain models before they leave the server.
package dto

import (
	"context"

	"github.com/mommylounge/lounge-server/internal/domain"
)

// NameResolver maps user ids to display names. Implementations degrade on
// lookup failure instead of returning an error.
type NameResolver interface {
	ResolveDisplayNames(ctx context.Context, userIDs []string) map[string]string
}

// Enricher denormalizes author and owner names.
//
//   - One directory lookup per call, not per comment
//   - Directory name first, then the name stored with the content, then the placeholder
type Enricher struct {
	names NameResolver
}

// NewEnricher creates a new enricher.
func NewEnricher(names NameResolver) *Enricher {
	return &Enricher{names: names}
}

// EnrichComments returns a copy of comments with author names resolved.
func (e *Enricher) EnrichComments(ctx context.Context, comments []domain.Comment) []domain.Comment {
	out := make([]domain.Comment, len(comments))
	copy(out, comments)
	if len(out) == 0 {
		return out
	}

	ids := make([]string, 0, len(out))
	for _, c := range out {
		ids = append(ids, c.AuthorID)
	}
	names := e.names.ResolveDisplayNames(ctx, ids)

	for i := range out {
		out[i].AuthorDisplayName = pick(names[out[i].AuthorID], out[i].AuthorDisplayName)
	}
	return out
}

// EnrichPost resolves the owner and comment author names of a single post in
// one lookup. Comments are returned newest first.
func (e *Enricher) EnrichPost(ctx context.Context, post *domain.Post) *domain.Post {
	posts := e.EnrichPosts(ctx, []domain.Post{*post})
	return &posts[0]
}

// EnrichPosts resolves owner names of a feed page plus every comment author.
func (e *Enricher) EnrichPosts(ctx context.Context, posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	copy(out, posts)
	if len(out) == 0 {
		return out
	}

	var ids []string
	for _, p := range out {
		ids = append(ids, p.OwnerID)
		for _, c := range p.Comments {
			ids = append(ids, c.AuthorID)
		}
	}
	names := e.names.ResolveDisplayNames(ctx, ids)

	for i := range out {
		p := &out[i]
		p.OwnerDisplayName = pick(names[p.OwnerID], p.OwnerDisplayName)

		comments := p.CommentsNewestFirst()
		for j := range comments {
			comments[j].AuthorDisplayName = pick(names[comments[j].AuthorID], comments[j].AuthorDisplayName)
		}
		p.Comments = comments
	}
	return out
}

func pick(resolved, stored string) string {
	switch {
	case resolved != "" && resolved != domain.PlaceholderDisplayName:
		return resolved
	case stored != "":
		return stored
	default:
		return domain.PlaceholderDisplayName
	}
}
