package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Activity is one entry in a learner's history feed.
type Activity struct {
	ent.Schema
}

func (Activity) Mixin() []ent.Mixin {
	return []ent.Mixin{SequenceMixin{}}
}

func (Activity) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable(),
		field.String("user_id"),
		field.String("kind").
			Comment("lesson_completed, quiz_submitted or custom"),
		field.String("lesson_id").
			Default(""),
		field.String("title").
			Default(""),
		field.String("detail").
			Default(""),
		field.Int("score").
			Default(0),
	}
}

func (Activity) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "sequence"),
	}
}
