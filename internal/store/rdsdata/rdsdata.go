// Package rdsdata implements store.Store on the Aurora Data API.
package rdsdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata/types"

	"github.com/alfredjeanlab/listener/internal/model"
	"github.com/alfredjeanlab/listener/internal/store"
)

// API is the subset of the Data API client used by the store.
type API interface {
	ExecuteStatement(ctx context.Context, params *rdsdata.ExecuteStatementInput, optFns ...func(*rdsdata.Options)) (*rdsdata.ExecuteStatementOutput, error)
}

// Config identifies the cluster and the credentials secret to run statements with.
type Config struct {
	ClusterARN string
	SecretARN  string
	Database   string
}

// DataAPIStore implements store.Store against an Aurora MySQL cluster through
// the Data API.
type DataAPIStore struct {
	api API
	cfg Config
}

// Compile-time check that DataAPIStore implements store.Store.
var _ store.Store = (*DataAPIStore)(nil)

// New returns a store that executes statements through api.
func New(api API, cfg Config) *DataAPIStore {
	return &DataAPIStore{api: api, cfg: cfg}
}

// quoteIdent quotes a MySQL identifier with backticks, doubling embedded ones.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (s *DataAPIStore) execute(ctx context.Context, sql string, params []types.SqlParameter) (*rdsdata.ExecuteStatementOutput, error) {
	return s.api.ExecuteStatement(ctx, &rdsdata.ExecuteStatementInput{
		ResourceArn: aws.String(s.cfg.ClusterARN),
		SecretArn:   aws.String(s.cfg.SecretARN),
		Database:    aws.String(s.cfg.Database),
		Sql:         aws.String(sql),
		Parameters:  params,
	})
}

func (s *DataAPIStore) InsertMessage(ctx context.Context, msg *model.Message) error {
	table := model.TableName(msg.OrgID)
	sql := fmt.Sprintf("insert into %s ( MessageId, EventData ) values ( :msgidparam, :dataparam )", quoteIdent(table))
	_, err := s.execute(ctx, sql, []types.SqlParameter{
		{Name: aws.String("msgidparam"), Value: &types.FieldMemberStringValue{Value: msg.MessageID}},
		{Name: aws.String("dataparam"), Value: &types.FieldMemberStringValue{Value: msg.Body}},
	})
	if err != nil {
		return model.Database("insert into "+table, err)
	}
	return nil
}

func (s *DataAPIStore) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	table := model.TableName(filter.OrgID)
	sql := fmt.Sprintf("select eventid, eventdata from %s where eventid > :eventidparam order by eventid asc limit :maxpercallparam", quoteIdent(table))
	out, err := s.execute(ctx, sql, []types.SqlParameter{
		{Name: aws.String("eventidparam"), Value: &types.FieldMemberLongValue{Value: filter.FirstEvent}},
		{Name: aws.String("maxpercallparam"), Value: &types.FieldMemberLongValue{Value: int64(filter.MaxEvents)}},
	})
	if err != nil {
		return nil, model.Database("select from "+table, err)
	}
	return recordsToEvents(table, out.Records)
}

// recordsToEvents converts typed Data API rows: the long cell is the event id
// and the string cell holds the event JSON.
func recordsToEvents(table string, records [][]types.Field) ([]*model.Event, error) {
	events := make([]*model.Event, 0, len(records))
	for _, row := range records {
		ev := &model.Event{}
		for _, field := range row {
			switch v := field.(type) {
			case *types.FieldMemberLongValue:
				ev.EventID = v.Value
			case *types.FieldMemberStringValue:
				if !json.Valid([]byte(v.Value)) {
					return nil, model.Database("decode eventdata from "+table, fmt.Errorf("event %d: invalid JSON", ev.EventID))
				}
				ev.EventData = json.RawMessage(v.Value)
			case *types.FieldMemberIsNull:
				ev.EventData = json.RawMessage("null")
			}
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *DataAPIStore) Ping(ctx context.Context) error {
	if _, err := s.execute(ctx, "select 1", nil); err != nil {
		return model.Database("ping", err)
	}
	return nil
}

// Close is a no-op; the Data API is connectionless.
func (s *DataAPIStore) Close() error { return nil }
