package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/imaginify/imaginify/internal/model"
)

// Common errors for image repository operations.
var (
	ErrImageNotFound  = errors.New("image not found")
	ErrAuthorNotFound = errors.New("image author not found")
)

// ImageFilter defines filters and paging for listing images.
type ImageFilter struct {
	// Search matches titles case-insensitively as a substring. Empty matches all.
	Search string
	Limit  int
	Offset int
}

const imageSelect = `
	SELECT i.id, i.title, i.transformation_type, i.public_id, i.secure_url, i.width, i.height, i.config,
	       i.transformation_url, i.aspect_ratio, i.color, i.prompt, i.author_id, i.created_at, i.updated_at,
	       u.id, u.first_name, u.last_name, u.clerk_id
	FROM images i
	LEFT JOIN users u ON u.id = i.author_id
`

// CreateImage inserts a new image record.
func (r *Repository) CreateImage(ctx context.Context, img *model.Image) error {
	if img.ID == "" {
		img.ID = newID()
	}

	query := `
		INSERT INTO images (id, title, transformation_type, public_id, secure_url, width, height, config,
		                    transformation_url, aspect_ratio, color, prompt, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		img.ID,
		img.Title,
		string(img.TransformationType),
		img.PublicID,
		img.SecureURL,
		img.Width,
		img.Height,
		configBytes(img.Config),
		img.TransformationURL,
		img.AspectRatio,
		img.Color,
		img.Prompt,
		nullString(img.AuthorID),
	).Scan(&img.CreatedAt, &img.UpdatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrAuthorNotFound
		}
		return fmt.Errorf("failed to create image: %w", err)
	}

	return nil
}

// GetImageByID retrieves an image with its author fields joined in.
func (r *Repository) GetImageByID(ctx context.Context, id string) (*model.Image, error) {
	query := imageSelect + ` WHERE i.id = $1`

	img, err := scanImage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image by ID: %w", err)
	}

	return img, nil
}

// UpdateImage overwrites the mutable fields of an image. The author is never
// changed here.
func (r *Repository) UpdateImage(ctx context.Context, img *model.Image) error {
	query := `
		UPDATE images
		SET title = $2, transformation_type = $3, public_id = $4, secure_url = $5, width = $6, height = $7,
		    config = $8, transformation_url = $9, aspect_ratio = $10, color = $11, prompt = $12,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		img.ID,
		img.Title,
		string(img.TransformationType),
		img.PublicID,
		img.SecureURL,
		img.Width,
		img.Height,
		configBytes(img.Config),
		img.TransformationURL,
		img.AspectRatio,
		img.Color,
		img.Prompt,
	).Scan(&img.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to update image: %w", err)
	}

	return nil
}

// DeleteImage removes an image by id.
func (r *Repository) DeleteImage(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrImageNotFound
	}

	return nil
}

// ListImages returns one page of images, most recently updated first, and
// the total number of images matching the filter.
func (r *Repository) ListImages(ctx context.Context, filter ImageFilter) ([]*model.Image, int, error) {
	where := ""
	args := []any{}
	if filter.Search != "" {
		where = ` WHERE i.title ILIKE $1`
		args = append(args, containsPattern(filter.Search))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM images i` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count images: %w", err)
	}

	query := imageSelect + where +
		fmt.Sprintf(` ORDER BY i.updated_at DESC, i.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make([]*model.Image, 0, filter.Limit)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating images: %w", err)
	}

	return images, total, nil
}

func scanImage(row pgx.Row) (*model.Image, error) {
	var (
		img       model.Image
		kind      string
		config    []byte
		authorID  *string
		joinedID  *string
		firstName *string
		lastName  *string
		clerkID   *string
	)

	err := row.Scan(
		&img.ID,
		&img.Title,
		&kind,
		&img.PublicID,
		&img.SecureURL,
		&img.Width,
		&img.Height,
		&config,
		&img.TransformationURL,
		&img.AspectRatio,
		&img.Color,
		&img.Prompt,
		&authorID,
		&img.CreatedAt,
		&img.UpdatedAt,
		&joinedID,
		&firstName,
		&lastName,
		&clerkID,
	)
	if err != nil {
		return nil, err
	}

	img.TransformationType = model.TransformationType(kind)
	if len(config) > 0 {
		img.Config = json.RawMessage(config)
	}
	if authorID != nil {
		img.AuthorID = *authorID
	}
	if joinedID != nil {
		img.Author = &model.Author{
			ID:        *joinedID,
			FirstName: deref(firstName),
			LastName:  deref(lastName),
			ClerkID:   deref(clerkID),
		}
	}

	return &img, nil
}

func configBytes(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
