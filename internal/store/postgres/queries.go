package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/listener/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// eventTable returns the quoted table identifier for an organization.
// Unquoted column names fold to lower case, so MessageId and messageid
// address the same column.
func eventTable(orgID string) string {
	return pq.QuoteIdentifier(model.TableName(orgID))
}

func queryInsertMessage(ctx context.Context, db executor, msg *model.Message) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO `+eventTable(msg.OrgID)+` (MessageId, EventData) VALUES ($1, $2)`,
		msg.MessageID, msg.Body,
	)
	return err
}

func queryListEvents(ctx context.Context, db executor, filter model.EventFilter) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT eventid, eventdata FROM `+eventTable(filter.OrgID)+` WHERE eventid > $1 ORDER BY eventid ASC LIMIT $2`,
		filter.FirstEvent, filter.MaxEvents,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*model.Event{}
	for rows.Next() {
		var (
			id   int64
			data sql.NullString
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		// NULL eventdata reads as JSON null, matching the Data API store.
		raw := json.RawMessage("null")
		if data.Valid {
			if !json.Valid([]byte(data.String)) {
				return nil, fmt.Errorf("event %d: invalid JSON in eventdata", id)
			}
			raw = json.RawMessage(data.String)
		}
		events = append(events, &model.Event{EventID: id, EventData: raw})
	}
	return events, rows.Err()
}
