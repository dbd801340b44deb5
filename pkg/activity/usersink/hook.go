package usersink

import (
	"context"
	"time"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/goliatone/go-widgets/pkg/activity"
	"github.com/google/uuid"
)

// Channel tags every record forwarded by Hook.
const Channel = "widgets"

// Hook adapts activity events into go-users ActivitySink records.
type Hook struct {
	Sink types.ActivitySink
}

// Notify maps the activity event into a types.ActivityRecord and forwards it.
// Actor and user ids that are not UUIDs are kept in the record data.
func (h Hook) Notify(ctx context.Context, evt activity.Event) {
	if h.Sink == nil {
		return
	}
	record := types.ActivityRecord{
		ID:         uuid.New(),
		UserID:     parseUUID(evt.UserID),
		ActorID:    parseUUID(evt.ActorID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    Channel,
		TenantID:   parseUUID(evt.TenantID),
		OrgID:      parseUUID(evt.OrgID),
		Data:       buildData(evt),
		OccurredAt: evt.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}
	_ = h.Sink.Log(ctx, record)
}

func buildData(evt activity.Event) map[string]any {
	data := activity.CloneMetadata(evt.Metadata)
	if data == nil {
		data = make(map[string]any)
	}
	if evt.ActorID != "" && parseUUID(evt.ActorID) == uuid.Nil {
		data["actor"] = evt.ActorID
	}
	if evt.UserID != "" && parseUUID(evt.UserID) == uuid.Nil {
		data["user"] = evt.UserID
	}
	return data
}

func parseUUID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
