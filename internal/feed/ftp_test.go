package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "standard ftp url",
			url:      "ftp://ftp.supplier.example/feeds/daily.csv",
			wantHost: "ftp.supplier.example:21",
			wantPath: "/feeds/daily.csv",
		},
		{
			name:     "ftp url with port",
			url:      "ftp://ftp.supplier.example:2121/feeds/daily.csv",
			wantHost: "ftp.supplier.example:2121",
			wantPath: "/feeds/daily.csv",
		},
		{
			name:    "http scheme rejected",
			url:     "http://example.com/feed.csv",
			wantErr: true,
		},
		{
			name:    "empty path",
			url:     "ftp://ftp.supplier.example",
			wantErr: true,
		},
		{
			name:    "invalid url",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := parseFTPURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestNewFTPFetcher_Defaults(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, 30*time.Second, f.opts.Timeout)
	assert.Equal(t, "anonymous", f.opts.User)
}

func TestNewFTPFetcher_Credentials(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{User: "supplier", Password: "secret"})
	assert.Equal(t, "supplier", f.opts.User)
	assert.Equal(t, "secret", f.opts.Password)
}
