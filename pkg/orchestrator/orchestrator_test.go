package orchestrator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	pkgerrors "github.com/glorpus-work/siphon/pkg/errors"
	"github.com/glorpus-work/siphon/pkg/orchestrator/mocks"
	"github.com/glorpus-work/siphon/pkg/pathmap"
)

func TestFetchAll_SingleWorker(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mapper := pathmap.New("/data")
	uris := []string{
		"http://example.com/a.ts",
		"http://example.com/b.ts",
		"http://example.com/c.ts",
	}

	dl := mocks.NewMockDownloader(ctrl)
	for _, uri := range uris {
		dl.EXPECT().DownloadOne(gomock.Any(), uri).Return("/data/"+uri[len("http://example.com/"):], nil).Times(1)
	}

	orch := New(mapper, []Downloader{dl}, Hooks{})

	results, err := orch.FetchAll(context.Background(), uris)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "/data/a.ts", results["http://example.com/a.ts"])
}

func TestFetchAll_PartitionsByMappedPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mapper := pathmap.New("/data")
	uris := []string{
		"http://example.com/a/one.ts",
		"http://example.com/a/two.ts",
		"http://example.com/b/three.ts",
		"http://example.com/b/four.ts",
	}

	const workers = 2
	dls := []*mocks.MockDownloader{
		mocks.NewMockDownloader(ctrl),
		mocks.NewMockDownloader(ctrl),
	}

	// Expectations mirror the orchestrator's partitioning: each URI must be
	// handled by exactly the worker its mapped path hashes to.
	for _, uri := range uris {
		path, err := mapper.Map(uri)
		require.NoError(t, err)
		idx := partitionIndex(path, workers)
		dls[idx].EXPECT().DownloadOne(gomock.Any(), uri).Return(path, nil).Times(1)
	}

	orch := New(mapper, []Downloader{dls[0], dls[1]}, Hooks{})

	results, err := orch.FetchAll(context.Background(), uris)
	require.NoError(t, err)
	assert.Len(t, results, len(uris))
}

func TestFetchAll_SamePathSameWorker(t *testing.T) {
	mapper := pathmap.New("/data")

	// Duplicate references to one underlying file must hash identically, for
	// any worker count.
	pathA, err := mapper.Map("http://example.com/a/master.m3u8")
	require.NoError(t, err)
	pathB, err := mapper.Map("http://example.com/a/master.m3u8")
	require.NoError(t, err)

	for _, n := range []int{1, 2, 3, 8} {
		assert.Equal(t, partitionIndex(pathA, n), partitionIndex(pathB, n))
	}
}

func TestFetchAll_ErrorDoesNotStopOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mapper := pathmap.New("/data")
	okURI := "http://example.com/ok.ts"
	badURI := "http://example.com/bad.ts"

	dl := mocks.NewMockDownloader(ctrl)
	dl.EXPECT().DownloadOne(gomock.Any(), okURI).Return("/data/example_com/ok.ts", nil).AnyTimes()
	dl.EXPECT().DownloadOne(gomock.Any(), badURI).
		Return("", pkgerrors.Wrap(pkgerrors.ErrTransferFailed, "GET")).AnyTimes()

	orch := New(mapper, []Downloader{dl}, Hooks{})

	results, err := orch.FetchAll(context.Background(), []string{okURI, badURI})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrTransferFailed)
	assert.Equal(t, "/data/example_com/ok.ts", results[okURI], "other URIs must still be downloaded")
	assert.NotContains(t, results, badURI)
}

func TestFetchAll_InvalidURISkipsWorkers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dl := mocks.NewMockDownloader(ctrl) // no expectations: must not be called

	orch := New(pathmap.New("/data"), []Downloader{dl}, Hooks{})

	results, err := orch.FetchAll(context.Background(), []string{"::not-a-uri"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidURI)
	assert.Empty(t, results)
}

func TestFetchAll_NoWorkers(t *testing.T) {
	orch := New(pathmap.New("/data"), nil, Hooks{})

	_, err := orch.FetchAll(context.Background(), []string{"http://example.com/a.ts"})
	require.Error(t, err)
}

func TestFetchAll_EmitsEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uri := "http://example.com/a.ts"
	dl := mocks.NewMockDownloader(ctrl)
	dl.EXPECT().DownloadOne(gomock.Any(), uri).Return("/data/example_com/a.ts", nil).Times(1)

	var mu sync.Mutex
	var phases []string
	hooks := Hooks{OnEvent: func(e Event) {
		mu.Lock()
		phases = append(phases, e.Phase)
		mu.Unlock()
	}}

	orch := New(pathmap.New("/data"), []Downloader{dl}, hooks)

	_, err := orch.FetchAll(context.Background(), []string{uri})
	require.NoError(t, err)
	assert.Equal(t, []string{"downloading", "done"}, phases)
}
