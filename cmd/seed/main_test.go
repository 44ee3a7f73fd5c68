package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/store/storetest"
)

const sampleDataset = `{
	"authors": [{"first_name": "Aldous", "last_name": "Huxley"}],
	"books": [{"title": "Brave New World", "isbn": "978-0-06-085052-4", "quantity": 2, "available_quantity": 2, "author_names": ["Aldous Huxley"]}]
}`

func TestLoadDataset_Demo(t *testing.T) {
	data, err := loadDataset(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, data.Users, 3)
	assert.Len(t, data.Books, 6)
}

func TestLoadDataset_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDataset), 0o600))

	data, err := loadDataset(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, data.Books, 1)
	assert.Equal(t, "Brave New World", data.Books[0].Title)
	assert.Equal(t, []string{"Aldous Huxley"}, data.Books[0].AuthorNames)

	_, err = loadDataset(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadDataset_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dataset.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleDataset))
	}))
	defer srv.Close()

	data, err := loadDataset(context.Background(), srv.URL+"/dataset.json")
	require.NoError(t, err)
	assert.Len(t, data.Authors, 1)

	_, err = loadDataset(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestDatasetSeedsIntoStore(t *testing.T) {
	st := storetest.Empty(t)

	data, err := loadDataset(context.Background(), "")
	require.NoError(t, err)
	report, err := st.Seed(context.Background(), data)
	require.NoError(t, err)
	assert.NotZero(t, report.Created)
}
