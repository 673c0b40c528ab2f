package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptKey(t *testing.T) {
	key, err := ReceiptKey("b-42")
	require.NoError(t, err)
	assert.Equal(t, "receipts/b-42.json", key)

	for _, bad := range []string{"", "  ", "../etc", "a/b", `a\b`} {
		_, err := ReceiptKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseEndpoint(t *testing.T) {
	assert.Equal(t, "minio:9000", parseEndpoint("http://minio:9000"))
	assert.Equal(t, "minio:9000", parseEndpoint("minio:9000"))
}

func TestNewReceiptArchiveRequiresBucket(t *testing.T) {
	_, err := NewReceiptArchive(Config{Endpoint: "localhost:9000"}, nil)
	require.Error(t, err)
	_, err = NewReceiptArchive(Config{Bucket: "receipts"}, nil)
	require.Error(t, err)
}
