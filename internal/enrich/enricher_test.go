package enrich_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/kwvolume/internal/engine/batch"
	"github.com/rshade/kwvolume/internal/enrich"
	"github.com/rshade/kwvolume/internal/kwapi"
)

// fakeFetcher answers every keyword with its entry in volumes and fails on
// the configured call.
type fakeFetcher struct {
	volumes map[string]*int64
	credits int64
	failOn  int
	err     error

	calls [][]string
}

func (f *fakeFetcher) FetchBatch(_ context.Context, keywords []string) (*kwapi.BatchResult, error) {
	f.calls = append(f.calls, append([]string(nil), keywords...))
	if f.failOn > 0 && len(f.calls) == f.failOn {
		return nil, f.err
	}

	result := &kwapi.BatchResult{}
	for _, kw := range keywords {
		if v, ok := f.volumes[kw]; ok {
			result.Keywords = append(result.Keywords, kwapi.KeywordData{Keyword: kw, Vol: v})
		}
	}
	credits := f.credits - int64(len(f.calls))
	result.Credits = &credits
	return result, nil
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) BatchStarted(num, total int) {
	r.events = append(r.events, fmt.Sprintf("start %d/%d", num, total))
}

func (r *recordingObserver) BatchFetched(progress batch.ProgressSnapshot, keywords []string, _ *kwapi.BatchResult) {
	r.events = append(r.events, fmt.Sprintf("done %d/%d (%d) %.0f%% complete=%t",
		progress.ProcessedBatches, progress.TotalBatches, len(keywords), progress.PercentComplete, progress.Complete))
}

func TestNew_Validation(t *testing.T) {
	_, err := enrich.New(nil, 100)
	require.Error(t, err)

	_, err = enrich.New(&fakeFetcher{}, 0)
	require.Error(t, err)
}

func TestCollect_Batches(t *testing.T) {
	keywords := make([]string, 250)
	volumes := map[string]*int64{}
	for i := range keywords {
		keywords[i] = fmt.Sprintf("kw-%d", i)
		volumes[keywords[i]] = vol(int64(i))
	}
	fetcher := &fakeFetcher{volumes: volumes, credits: 100}
	obs := &recordingObserver{}

	e, err := enrich.New(fetcher, 100, enrich.WithObserver(obs))
	require.NoError(t, err)

	coll, err := e.Collect(context.Background(), keywords)
	require.NoError(t, err)

	require.Len(t, fetcher.calls, 3)
	assert.Len(t, fetcher.calls[0], 100)
	assert.Len(t, fetcher.calls[2], 50)
	assert.Equal(t, "kw-249", fetcher.calls[2][49])
	assert.Equal(t, 3, coll.Batches)
	assert.Len(t, coll.Volumes, 250)
	require.NotNil(t, coll.Credits)
	assert.Equal(t, int64(97), *coll.Credits)
	assert.Equal(t, []string{
		"start 1/3", "done 1/3 (100) 40% complete=false",
		"start 2/3", "done 2/3 (100) 80% complete=false",
		"start 3/3", "done 3/3 (50) 100% complete=true",
	}, obs.events)
}

func TestCollect_Empty(t *testing.T) {
	fetcher := &fakeFetcher{}
	e, err := enrich.New(fetcher, 100)
	require.NoError(t, err)

	coll, err := e.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, fetcher.calls)
	assert.Zero(t, coll.Batches)
	assert.Empty(t, coll.Volumes)
}

func TestCollect_StopsOnError(t *testing.T) {
	apiErr := &kwapi.APIError{StatusCode: 429, Body: "Too Many Requests"}
	fetcher := &fakeFetcher{failOn: 2, err: apiErr}

	e, err := enrich.New(fetcher, 2)
	require.NoError(t, err)

	_, err = e.Collect(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.Error(t, err)

	var gotAPIErr *kwapi.APIError
	require.ErrorAs(t, err, &gotAPIErr)
	assert.Equal(t, 429, gotAPIErr.StatusCode)
	assert.Contains(t, err.Error(), "fetching batch 2/3")
	assert.Len(t, fetcher.calls, 2, "no batch runs after a failure")
}

func TestCollect_Cancelled(t *testing.T) {
	fetcher := &fakeFetcher{}
	e, err := enrich.New(fetcher, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Collect(ctx, []string{"a", "b"})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, fetcher.calls)
}

func TestRun_MergesIntoTable(t *testing.T) {
	tbl := load(t, "Keyword,Search Volume\nfoo,5\nbar,\nfoo,5\nqux,9\n")
	fetcher := &fakeFetcher{volumes: map[string]*int64{"foo": nil, "bar": vol(12), "qux": vol(0)}}

	e, err := enrich.New(fetcher, 100)
	require.NoError(t, err)

	result, err := e.Run(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"foo", "5"}, {"bar", "12"}, {"foo", "5"}, {"qux", "0"}}, tbl.Rows)
	assert.Equal(t, []string{"foo", "bar", "foo", "qux"}, fetcher.calls[0], "duplicates are sent as-is")
	assert.Equal(t, 2, result.Stats.RowsUpdated)
	assert.Equal(t, 2, result.Stats.NullVolumes)
	assert.Equal(t, 1, result.Batches)
}

func TestRun_ErrorLeavesTableUntouched(t *testing.T) {
	tbl := load(t, "Keyword\nfoo\n")
	fetcher := &fakeFetcher{failOn: 1, err: &kwapi.TransportError{Err: errors.New("connection refused")}}

	e, err := enrich.New(fetcher, 100)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), tbl)
	require.Error(t, err)
	assert.Equal(t, []string{"Keyword"}, tbl.Header)
	assert.Equal(t, [][]string{{"foo"}}, tbl.Rows)
}
