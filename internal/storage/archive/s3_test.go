package archive

import (
	"testing"

	"github.com/newthinker/datahub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestS3Storage_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "news/AAPL/a.json", "news/AAPL/a.json"},
		{"datahub", "news/AAPL/a.json", "datahub/news/AAPL/a.json"},
		{"datahub/", "/news/AAPL/a.json", "datahub/news/AAPL/a.json"},
	}

	for _, tt := range tests {
		s, err := NewS3(config.S3Config{Bucket: "b", Prefix: tt.prefix})
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.key(tt.path))
		assert.Equal(t, "news/AAPL/a.json", s.relative(s.key(tt.path)))
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(config.S3Config{})
	assert.Error(t, err)
}
