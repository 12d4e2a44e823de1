// Package usersink bridges dashboard activity events into the go-users
// activity log.
package usersink

import (
	"context"

	"github.com/goliatone/go-insight/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink persists activity records. *go-users* stores satisfy this.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook maps activity events onto the user activity sink.
type Hook struct {
	Sink Sink
}

// Notify implements activity.Hook. Events without a verb are ignored.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil || evt.Verb == "" {
		return nil
	}

	record := types.ActivityRecord{
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		OccurredAt: evt.OccurredAt,
	}
	if id, err := uuid.Parse(evt.ActorID); err == nil {
		record.ActorID = id
	}
	if id, err := uuid.Parse(evt.UserID); err == nil {
		record.UserID = id
	}
	if id, err := uuid.Parse(evt.TenantID); err == nil {
		record.TenantID = id
	}

	data := make(map[string]any, len(evt.Metadata)+2)
	for k, v := range evt.Metadata {
		data[k] = v
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = evt.Recipients
	}
	if len(data) > 0 {
		record.Data = data
	}

	return h.Sink.Log(ctx, record)
}
