package res

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gompdf/claimpacket/internal/cache"
	"github.com/gompdf/claimpacket/pkg/claim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.RetryDelay = time.Millisecond
	opts.Timeout = 5 * time.Second
	return opts
}

func TestResolve(t *testing.T) {
	opts := testOptions()
	opts.BaseURL = "https://project.example.co/"
	l := NewLoader(opts)

	got, err := l.Resolve("claims/c1/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://project.example.co/storage/v1/object/public/claim-evidence/claims/c1/photo.jpg", got)

	got, err = l.Resolve("/../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "https://project.example.co/storage/v1/object/public/claim-evidence/etc/passwd", got)

	got, err = l.Resolve("https://project.example.co/storage/v1/object/public/claim-evidence/c1/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://project.example.co/storage/v1/object/public/claim-evidence/c1/a.png", got)

	_, err = l.Resolve("")
	assert.Error(t, err)
}

func TestResolveRefusesForeignHosts(t *testing.T) {
	opts := testOptions()
	opts.BaseURL = "https://project.example.co"
	l := NewLoader(opts)

	for _, p := range []string{
		"http://169.254.169.254/latest/meta-data/",
		"https://cdn.example.com/a.png",
		"http://localhost:6379/",
	} {
		_, err := l.Resolve(p)
		assert.ErrorIs(t, err, ErrHostNotAllowed, p)
	}

	_, err := l.FetchResource(context.Background(), "http://169.254.169.254/latest/meta-data/")
	assert.ErrorIs(t, err, claim.ErrResourceFetch)
	assert.ErrorIs(t, err, ErrHostNotAllowed)

	// no base URL: absolute URLs need an explicit allow-list entry
	_, err = NewLoader(testOptions()).Resolve("https://cdn.example.com/a.png")
	assert.ErrorIs(t, err, ErrHostNotAllowed)

	opts = testOptions()
	opts.AllowedHosts = []string{"CDN.example.com"}
	got, err := NewLoader(opts).Resolve("https://cdn.example.com:8443/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com:8443/a.png", got)
}

func TestFetchRemoteRefusesForeignRedirect(t *testing.T) {
	var foreignHits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits.Add(1)
		w.Write([]byte("secret"))
	}))
	defer foreign.Close()

	var storageHits atomic.Int32
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storageHits.Add(1)
		http.Redirect(w, r, foreign.URL+"/meta-data", http.StatusFound)
	}))
	defer storage.Close()

	opts := testOptions()
	opts.BaseURL = storage.URL
	opts.Retries = 2
	l := NewLoader(opts)

	_, err := l.FetchResource(context.Background(), "c1/a.png")
	assert.ErrorIs(t, err, ErrHostNotAllowed)
	assert.Equal(t, int32(0), foreignHits.Load())
	assert.Equal(t, int32(1), storageHits.Load(), "refused redirects are not retried")
}

func TestResolveLocalStaysInsideRoot(t *testing.T) {
	opts := testOptions()
	opts.SearchPaths = []string{"/srv/evidence"}
	l := NewLoader(opts)

	got, err := l.Resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/evidence", "etc", "passwd"), got)
}

func TestFetchDataURL(t *testing.T) {
	l := NewLoader(testOptions())
	payload := []byte{0x89, 'P', 'N', 'G'}

	got, err := l.FetchResource(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	got, err = l.FetchResource(context.Background(), "data:text/plain,Hello%20World")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(got))

	_, err = l.FetchResource(context.Background(), "data:broken")
	assert.ErrorIs(t, err, claim.ErrResourceFetch)
}

func TestFetchLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "c1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c1", "a.jpg"), []byte("jpeg"), 0o644))

	opts := testOptions()
	opts.SearchPaths = []string{dir}
	l := NewLoader(opts)

	got, err := l.FetchResource(context.Background(), "c1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(got))

	_, err = l.FetchResource(context.Background(), "c1/missing.jpg")
	assert.ErrorIs(t, err, claim.ErrResourceFetch)
}

func TestFetchRemote(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/storage/v1/object/public/claim-evidence/c1/ok.png":
			w.Write([]byte("png-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	opts := testOptions()
	opts.BaseURL = srv.URL
	l := NewLoader(opts)

	got, err := l.FetchResource(context.Background(), "c1/ok.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))

	hits.Store(0)
	_, err = l.FetchResource(context.Background(), "c1/gone.png")
	assert.ErrorIs(t, err, claim.ErrResourceFetch)
	assert.Equal(t, int32(1), hits.Load(), "404 is not retried")
}

func TestFetchRemoteRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("finally"))
	}))
	defer srv.Close()

	opts := testOptions()
	opts.BaseURL = srv.URL
	opts.Retries = 2
	l := NewLoader(opts)

	got, err := l.FetchResource(context.Background(), "x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "finally", string(got))
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchRemoteSizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	opts := testOptions()
	opts.BaseURL = srv.URL
	opts.MaxBytes = 16
	l := NewLoader(opts)

	_, err := l.FetchResource(context.Background(), "big.jpg")
	assert.ErrorIs(t, err, claim.ErrResourceFetch)
}

func TestFetchUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("cached"))
	}))
	defer srv.Close()

	opts := testOptions()
	opts.BaseURL = srv.URL
	opts.Cache = cache.NewMemoryCache(time.Minute, time.Minute)
	l := NewLoader(opts)

	for i := 0; i < 3; i++ {
		got, err := l.FetchResource(context.Background(), "a.jpg")
		require.NoError(t, err)
		assert.Equal(t, "cached", string(got))
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := testOptions()
	opts.BaseURL = srv.URL
	_, err := NewLoader(opts).FetchResource(ctx, "a.jpg")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, claim.ErrResourceFetch)
}
