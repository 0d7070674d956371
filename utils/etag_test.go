package utils

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	now := time.Now()

	etag := GenerateETag(id, now)
	if !strings.HasPrefix(etag, `"`) || !strings.HasSuffix(etag, `"`) {
		t.Fatalf("etag %q is not quoted", etag)
	}

	if etag != GenerateETag(id, now) {
		t.Fatalf("etag is not deterministic")
	}
	if etag == GenerateETag(id, now.Add(time.Second)) {
		t.Fatalf("etag did not change with update time")
	}
	if etag == GenerateETag(primitive.NewObjectID(), now) {
		t.Fatalf("etag did not change with id")
	}
}
