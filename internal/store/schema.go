package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	progressTableName      = "progress"
	sessionEventsTableName = "session_events"
	answerEventsTableName  = "answer_events"
	snapshotsTableName     = "snapshots"
	sequenceTableName      = "global_sequence"
)

var (
	// progressColumns holds one streak per (user, item).
	progressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "username", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeInt},
		{Name: "streak", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	ProgressTable = &schema.Table{
		Name:       progressTableName,
		Columns:    progressColumns,
		PrimaryKey: []*schema.Column{progressColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "progress_username_item_id",
				Unique:  true,
				Columns: []*schema.Column{progressColumns[1], progressColumns[2]},
			},
		},
	}

	// sessionEventsColumns records session start and end.
	sessionEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "username", Type: field.TypeString},
		{Name: "action", Type: field.TypeString},
		{Name: "mode", Type: field.TypeString, Default: ""},
		{Name: "turns", Type: field.TypeInt, Default: 0},
		{Name: "correct", Type: field.TypeInt, Default: 0},
		{Name: "mastered", Type: field.TypeInt, Default: 0},
		{Name: "duration_secs", Type: field.TypeInt, Default: 0},
	}
	SessionEventsTable = &schema.Table{
		Name:       sessionEventsTableName,
		Columns:    sessionEventsColumns,
		PrimaryKey: []*schema.Column{sessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionevent_sequence", Columns: []*schema.Column{sessionEventsColumns[1]}},
			{Name: "sessionevent_username_action", Columns: []*schema.Column{sessionEventsColumns[4], sessionEventsColumns[5]}},
		},
	}

	// answerEventsColumns records every judged response.
	answerEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "username", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeInt},
		{Name: "expected", Type: field.TypeString},
		{Name: "given", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool},
		{Name: "streak_after", Type: field.TypeInt},
		{Name: "position", Type: field.TypeInt},
	}
	AnswerEventsTable = &schema.Table{
		Name:       answerEventsTableName,
		Columns:    answerEventsColumns,
		PrimaryKey: []*schema.Column{answerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_sequence", Columns: []*schema.Column{answerEventsColumns[1]}},
			{Name: "answerevent_username_item_id", Columns: []*schema.Column{answerEventsColumns[4], answerEventsColumns[5]}},
		},
	}

	// snapshotsColumns holds point-in-time captures of a user's streaks.
	snapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "username", Type: field.TypeString},
		{Name: "data", Type: field.TypeString, Size: 1 << 20},
	}
	SnapshotsTable = &schema.Table{
		Name:       snapshotsTableName,
		Columns:    snapshotsColumns,
		PrimaryKey: []*schema.Column{snapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "snapshot_username_timestamp", Columns: []*schema.Column{snapshotsColumns[3], snapshotsColumns[2]}},
		},
	}

	// sequenceColumns is the single-row global event counter.
	sequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	SequenceTable = &schema.Table{
		Name:       sequenceTableName,
		Columns:    sequenceColumns,
		PrimaryKey: []*schema.Column{sequenceColumns[0]},
	}

	// Tables holds every table managed by auto-migration.
	Tables = []*schema.Table{
		ProgressTable,
		SessionEventsTable,
		AnswerEventsTable,
		SnapshotsTable,
		SequenceTable,
	}
)
