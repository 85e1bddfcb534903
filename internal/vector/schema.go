package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// SchemaClient is the subset of Weaviate schema operations needed at bootstrap.
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema creates the chunk class if missing and backfills any
// properties added since the class was first created. Vectors are supplied
// by the ingestion pipeline, so the class carries no vectorizer.
func EnsureSchema(ctx context.Context, client SchemaClient, className string) error {
	exists, err := client.ClassExists(ctx, className)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "content",
			DataType: []string{"text"},
		},
		{
			Name:     "chunk_index",
			DataType: []string{"int"},
		},
		{
			Name:     "source_type",
			DataType: []string{"string"},
		},
		{
			Name:     "task_id",
			DataType: []string{"string"},
		},
		{
			Name:     "url",
			DataType: []string{"string"},
		},
		{
			Name:     "filename",
			DataType: []string{"string"},
		},
		{
			Name:     "title",
			DataType: []string{"text"},
		},
		{
			Name:     "author",
			DataType: []string{"string"},
		},
		{
			Name:     "page_count",
			DataType: []string{"string"},
		},
		{
			Name:     "file_size",
			DataType: []string{"string"},
		},
		{
			Name:     "modified_at",
			DataType: []string{"string"},
		},
		{
			Name:     "transcription_available",
			DataType: []string{"string"},
		},
		{
			Name:     "transcription_engine",
			DataType: []string{"string"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       className,
			Description: "An embedded chunk of ingested source content",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	class, err := client.GetClass(ctx, className)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, className, p); err != nil {
				return err
			}
		}
	}

	return nil
}
