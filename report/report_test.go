package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	r := &Report{
		Dataset:        "facebook",
		Algorithm:      "online",
		Servers:        16,
		Replicas:       2,
		LoadConstraint: 1,
		Nodes:          4039,
		Edges:          88234,
		Seed:           1,
		Cost:           12345,
		Elapsed:        1500 * time.Millisecond,
	}
	r.AddSample(256, 100)
	r.AddSample(512, 180)
	r.AddSample(768, 240)
	r.AddPhase("ingest", 12345, 1, time.Second)
	return r
}

func TestReport_Naming(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, "facebook-online-16-2-4039", r.Name())
	assert.Equal(t, "12345,1500", r.Line())
	assert.Equal(t, []string{"facebook", "online", "16", "2", "4039", "12345", "1500"}, r.Record())
}

func TestCSV(t *testing.T) {
	a := sampleReport()
	b := sampleReport()
	b.Algorithm = "random"
	b.Cost = 99999

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, a, b))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "data,algorithm,server,replica,node,cost,time", lines[0])
	assert.Equal(t, "facebook,random,16,2,4039,99999,1500", lines[2])

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.Name(), got[1].Name())
	assert.Equal(t, 99999, got[1].Cost)
	assert.Equal(t, 1500*time.Millisecond, got[1].Elapsed)

	_, err = ReadCSV(strings.NewReader("a,b,c,d,e,f,g\n"))
	assert.Error(t, err)
	_, err = ReadCSV(strings.NewReader(strings.Join(Header, ",") + "\nx,y,1,2,3,four,5\n"))
	assert.ErrorContains(t, err, "column cost")
}

func TestSummarizeLoads(t *testing.T) {
	s, err := SummarizeLoads([]int{4, 4, 4})
	require.NoError(t, err)
	assert.Equal(t, LoadSummary{Mean: 4, StdDev: 0, Min: 4, Max: 4, Spread: 0}, s)

	s, err = SummarizeLoads([]int{2, 4, 6})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, s.Mean, 1e-9)
	assert.InDelta(t, 1.632993, s.StdDev, 1e-6)
	assert.Equal(t, 4, s.Spread)

	s, err = SummarizeLoads(nil)
	require.NoError(t, err)
	assert.Zero(t, s)
}

func TestPlot(t *testing.T) {
	a := sampleReport()
	b := sampleReport()
	b.Algorithm = "random"
	b.Samples = []Sample{{256, 150}, {512, 300}, {768, 450}}

	out := Plot([]*Report{a, b}, 30, 8)
	assert.Contains(t, out, "inter-server cost: online, random")

	out = Plot([]*Report{a}, 30, 8)
	assert.Contains(t, out, "inter-server cost: online")

	assert.Empty(t, Plot([]*Report{{Algorithm: "spar"}}, 30, 8))
}

func TestBlobSink(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	sink := NewBlobSink(store, "runs")

	r := sampleReport()
	require.NoError(t, sink.Write(ctx, r))

	runs, err := sink.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{r.Name()}, runs)

	got, err := sink.Load(ctx, r.Name())
	require.NoError(t, err)
	assert.Equal(t, r, got)

	require.NoError(t, sink.WriteSummary(ctx, "summary.csv", []*Report{r}))
	data, err := blobstore.ReadAll(ctx, store, "runs/summary.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "data,algorithm"))

	runs, err = sink.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = sink.Load(ctx, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

type fakeDDB struct {
	items []*dynamodb.PutItemInput
	err   error
}

func (f *fakeDDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items = append(f.items, in)
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoSink(t *testing.T) {
	ddb := &fakeDDB{}
	sink := NewDynamoSink(ddb, "sparsim-runs")
	r := sampleReport()

	require.NoError(t, sink.Write(context.Background(), r))
	require.Len(t, ddb.items, 1)

	in := ddb.items[0]
	assert.Equal(t, "sparsim-runs", *in.TableName)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "facebook"}, in.Item["dataset"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: r.Name()}, in.Item["run"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "12345"}, in.Item["cost"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1500"}, in.Item["elapsed_ms"])

	body := in.Item["report"].(*types.AttributeValueMemberS).Value
	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(body), &decoded))
	assert.Equal(t, r.Cost, decoded.Cost)
}

func TestTee_CombinesErrors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	failing := &fakeDDB{err: errors.New("throttled")}

	err := Tee(NewDynamoSink(failing, "t"), NewBlobSink(store, "")).Write(ctx, sampleReport())
	require.ErrorContains(t, err, "throttled")

	// The blob sink still ran.
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 1)
}
