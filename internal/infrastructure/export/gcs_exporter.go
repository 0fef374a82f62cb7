// Package export writes user snapshots to Google Cloud Storage.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/pkg/helpers"
)

type uploadFunc func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)

// GCSExporter implements application.Exporter.
type GCSExporter struct {
	Bucket string
	Prefix string

	now    func() time.Time
	upload uploadFunc
}

func NewGCSExporter(client *storage.Client, bucket, prefix string) *GCSExporter {
	return &GCSExporter{
		Bucket: bucket,
		Prefix: prefix,
		now:    time.Now,
		upload: func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
			return helpers.UploadObject(ctx, client, bucket, objectPath, contentType, r)
		},
	}
}

type exportedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type snapshot struct {
	ExportedAt time.Time      `json:"exported_at"`
	Count      int            `json:"count"`
	Users      []exportedUser `json:"users"`
}

// ObjectPath names the object for an export taken at t.
func (e *GCSExporter) ObjectPath(t time.Time) string {
	return path.Join(e.Prefix, "users-"+t.UTC().Format("20060102T150405Z")+".json")
}

func (e *GCSExporter) Export(ctx context.Context, users []entity.User) (string, error) {
	at := e.now().UTC()
	snap := snapshot{ExportedAt: at, Count: len(users), Users: make([]exportedUser, 0, len(users))}
	for _, u := range users {
		snap.Users = append(snap.Users, exportedUser{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return e.upload(ctx, e.ObjectPath(at), "application/json", bytes.NewReader(b))
}
