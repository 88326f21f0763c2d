package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mommylounge/lounge-server/internal/domain"
)

// postDocument is the stored shape of a post. Comments are embedded.
type postDocument struct {
	ID               primitive.ObjectID `bson:"_id"`
	OwnerID          string             `bson:"owner_id"`
	OwnerDisplayName string             `bson:"owner_display_name"`
	Title            string             `bson:"title"`
	Category         string             `bson:"category"`
	Content          string             `bson:"content"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at,omitempty"`
	Comments         []commentDocument  `bson:"comments"`
	Revision         int64              `bson:"revision"`
}

type commentDocument struct {
	ID                primitive.ObjectID `bson:"_id"`
	AuthorID          string             `bson:"author_id"`
	AuthorDisplayName string             `bson:"author_display_name"`
	Text              string             `bson:"text"`
	Timestamp         time.Time          `bson:"timestamp"`
	EditedAt          time.Time          `bson:"edited_at,omitempty"`
}

type notificationDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	RecipientUserID string             `bson:"recipient_user_id"`
	ActorID         string             `bson:"actor_id"`
	PostID          primitive.ObjectID `bson:"post_id"`
	CommentID       string             `bson:"comment_id,omitempty"`
	Message         string             `bson:"message"`
	IsRead          bool               `bson:"is_read"`
	CreatedAt       time.Time          `bson:"created_at"`
	ReadAt          time.Time          `bson:"read_at,omitempty"`
}

type userDocument struct {
	ID          string    `bson:"_id"`
	DisplayName string    `bson:"display_name"`
	Bio         string    `bson:"bio"`
	CreatedAt   time.Time `bson:"created_at"`
	LastSeenAt  time.Time `bson:"last_seen_at"`
}

func (d *postDocument) toDomain() *domain.Post {
	p := &domain.Post{
		ID:               d.ID.Hex(),
		OwnerID:          d.OwnerID,
		OwnerDisplayName: d.OwnerDisplayName,
		Title:            d.Title,
		Category:         d.Category,
		Content:          d.Content,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        utcOrZero(d.UpdatedAt),
		Comments:         make([]domain.Comment, 0, len(d.Comments)),
		Revision:         d.Revision,
	}
	for i := range d.Comments {
		p.Comments = append(p.Comments, d.Comments[i].toDomain())
	}
	return p
}

func (d *commentDocument) toDomain() domain.Comment {
	return domain.Comment{
		ID:                d.ID.Hex(),
		AuthorID:          d.AuthorID,
		AuthorDisplayName: d.AuthorDisplayName,
		Text:              d.Text,
		Timestamp:         d.Timestamp.UTC(),
		EditedAt:          utcOrZero(d.EditedAt),
	}
}

func commentFromDomain(c domain.Comment) (commentDocument, error) {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return commentDocument{}, err
	}
	return commentDocument{
		ID:                oid,
		AuthorID:          c.AuthorID,
		AuthorDisplayName: c.AuthorDisplayName,
		Text:              c.Text,
		Timestamp:         c.Timestamp,
		EditedAt:          c.EditedAt,
	}, nil
}

func (d *notificationDocument) toDomain() domain.Notification {
	return domain.Notification{
		ID:              d.ID.Hex(),
		RecipientUserID: d.RecipientUserID,
		ActorID:         d.ActorID,
		PostID:          d.PostID.Hex(),
		CommentID:       d.CommentID,
		Message:         d.Message,
		IsRead:          d.IsRead,
		CreatedAt:       d.CreatedAt.UTC(),
		ReadAt:          utcOrZero(d.ReadAt),
	}
}

func (d *userDocument) toDomain() *domain.UserProfile {
	return &domain.UserProfile{
		ID:          d.ID,
		DisplayName: d.DisplayName,
		Bio:         d.Bio,
		CreatedAt:   d.CreatedAt.UTC(),
		LastSeenAt:  utcOrZero(d.LastSeenAt),
	}
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}
