package report

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/blobstore"
)

// Sink receives finished reports.
type Sink interface {
	Write(ctx context.Context, r *Report) error
}

// Tee returns a Sink that writes to every sink in order. All sinks are
// attempted; their errors are combined.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) Write(ctx context.Context, r *Report) error {
	var err error
	for _, s := range t {
		err = errors.CombineErrors(err, s.Write(ctx, r))
	}
	return err
}

// BlobSink stores reports as JSON blobs named <prefix>/<run name>.json.
type BlobSink struct {
	store  blobstore.BlobStore
	prefix string
}

// NewBlobSink creates a sink writing below prefix in store.
func NewBlobSink(store blobstore.BlobStore, prefix string) *BlobSink {
	return &BlobSink{store: store, prefix: prefix}
}

func (s *BlobSink) key(name string) string {
	return path.Join(s.prefix, name)
}

// Write stores r as JSON.
func (s *BlobSink) Write(ctx context.Context, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode report %s", r.Name())
	}
	if err := s.store.Put(ctx, s.key(r.Name()+".json"), data); err != nil {
		return errors.Wrapf(err, "store report %s", r.Name())
	}
	return nil
}

// WriteSummary stores a CSV summary of reports under name.
func (s *BlobSink) WriteSummary(ctx context.Context, name string, reports []*Report) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, reports...); err != nil {
		return err
	}
	return errors.Wrapf(s.store.Put(ctx, s.key(name), buf.Bytes()), "store summary %s", name)
}

// Load reads back the report stored for the given run name.
func (s *BlobSink) Load(ctx context.Context, run string) (*Report, error) {
	data, err := blobstore.ReadAll(ctx, s.store, s.key(run+".json"))
	if err != nil {
		return nil, errors.Wrapf(err, "load report %s", run)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "decode report %s", run)
	}
	return &r, nil
}

// Runs lists the run names stored by the sink.
func (s *BlobSink) Runs(ctx context.Context) ([]string, error) {
	names, err := s.store.List(ctx, s.prefix)
	if err != nil {
		return nil, err
	}
	var runs []string
	for _, n := range names {
		if path.Ext(n) != ".json" {
			continue
		}
		runs = append(runs, path.Base(n[:len(n)-len(".json")]))
	}
	return runs, nil
}

// DDBClient is the subset of the DynamoDB API used by DynamoSink.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoSink records one item per run.
//
// Table schema:
//   - Partition key: dataset (string)
//   - Sort key: run (string) - the run name
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name sparsim-runs \
//	  --attribute-definitions AttributeName=dataset,AttributeType=S AttributeName=run,AttributeType=S \
//	  --key-schema AttributeName=dataset,KeyType=HASH AttributeName=run,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DynamoSink struct {
	client DDBClient
	table  string
}

// NewDynamoSink creates a sink writing to table.
func NewDynamoSink(client DDBClient, table string) *DynamoSink {
	return &DynamoSink{client: client, table: table}
}

// Write puts the run item, replacing an earlier run with the same name.
func (s *DynamoSink) Write(ctx context.Context, r *Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, "encode report %s", r.Name())
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"dataset":     &types.AttributeValueMemberS{Value: r.Dataset},
			"run":         &types.AttributeValueMemberS{Value: r.Name()},
			"algorithm":   &types.AttributeValueMemberS{Value: r.Algorithm},
			"servers":     number(r.Servers),
			"replicas":    number(r.Replicas),
			"nodes":       number(r.Nodes),
			"cost":        number(r.Cost),
			"elapsed_ms":  number(int(r.Elapsed.Milliseconds())),
			"load_spread": number(r.Loads.Spread),
			"report":      &types.AttributeValueMemberS{Value: string(body)},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "put run %s", r.Name())
	}
	return nil
}

func number(n int) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}
