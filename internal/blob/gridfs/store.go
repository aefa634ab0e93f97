package gridfs

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cookinghub/internal/blob"
	"cookinghub/internal/common"
)

type fileMetadata struct {
	ContentType string    `bson:"content_type"`
	UploadedAt  time.Time `bson:"uploaded_at"`
}

type store struct {
	bucket *gridfs.Bucket
}

func NewGridFS(bucket *gridfs.Bucket) blob.Store {
	return &store{bucket: bucket}
}

func (s *store) Put(ctx context.Context, r io.Reader, filename, contentType string) (*blob.Info, error) {
	name, contentType, err := blob.PrepareUpload(filename, contentType)
	if err != nil {
		return nil, err
	}

	uploadedAt := time.Now().UTC()
	metadata := bson.D{
		{Key: "content_type", Value: contentType},
		{Key: "uploaded_at", Value: uploadedAt},
	}

	stream, err := s.bucket.OpenUploadStream(name, options.GridFSUpload().SetMetadata(metadata))
	if err != nil {
		return nil, common.Fault("put blob", errors.Wrap(err, "failed to open upload stream"))
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	size, err := io.Copy(stream, blob.NewContextReader(ctx, r))
	if err != nil {
		// drops the chunks written so far; no files document exists yet
		_ = stream.Abort()
		return nil, common.Fault("put blob", errors.Wrap(err, "failed to copy blob content"))
	}

	// Close writes the files document, which is what makes the blob visible
	if err := stream.Close(); err != nil {
		return nil, common.Fault("put blob", errors.Wrap(err, "failed to finish upload"))
	}

	oid, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return nil, common.Fault("put blob", errors.Errorf("unexpected file id type %T", stream.FileID))
	}

	return &blob.Info{
		ID:          blob.ID(oid.Hex()),
		Filename:    name,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  uploadedAt,
	}, nil
}

func (s *store) Get(ctx context.Context, id blob.ID) (io.ReadCloser, *blob.Info, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return nil, nil, blob.ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, common.Fault("get blob", err)
	}

	stream, err := s.bucket.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, nil, blob.ErrNotFound
	} else if err != nil {
		return nil, nil, common.Fault("get blob", errors.Wrap(err, "failed to open download stream"))
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	file := stream.GetFile()
	info := &blob.Info{
		ID:         id,
		Filename:   file.Name,
		Size:       file.Length,
		UploadedAt: file.UploadDate,
	}

	var meta fileMetadata
	if file.Metadata != nil && bson.Unmarshal(file.Metadata, &meta) == nil {
		info.ContentType = meta.ContentType
	}
	// files written by older tools carry no metadata
	if info.ContentType == "" {
		info.ContentType = common.ContentTypeFor(file.Name)
	}

	return stream, info, nil
}

func (s *store) Delete(ctx context.Context, id blob.ID) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return false, nil
	}

	err = s.bucket.DeleteContext(ctx, oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return false, nil
	} else if err != nil {
		return false, common.Fault("delete blob", errors.Wrap(err, "failed to delete file"))
	}
	return true, nil
}
