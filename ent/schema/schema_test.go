package schema_test

import (
	"slices"
	"testing"

	"entgo.io/ent"
	entschema "entgo.io/ent/dialect/sql/schema"

	"github.com/abhisek/nibble/ent/schema"
	"github.com/abhisek/nibble/internal/store"
)

// The store builds its tables by hand; these tests keep them in step with
// the declarative schemas.

func fieldNames(mixins []ent.Mixin, fields []ent.Field) []string {
	var names []string
	for _, m := range mixins {
		for _, f := range m.Fields() {
			names = append(names, f.Descriptor().Name)
		}
	}
	for _, f := range fields {
		if n := f.Descriptor().Name; n != "id" {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

func columnNames(t *entschema.Table) []string {
	var names []string
	for _, c := range t.Columns {
		if c.Name != "id" {
			names = append(names, c.Name)
		}
	}
	slices.Sort(names)
	return names
}

func TestSchemasMatchStoreTables(t *testing.T) {
	tests := []struct {
		name  string
		table *entschema.Table
		want  []string
	}{
		{
			name:  "llm_request_events",
			table: store.LLMRequestEventsTable,
			want:  fieldNames(schema.LLMRequestEvent{}.Mixin(), schema.LLMRequestEvent{}.Fields()),
		},
		{
			name:  "lesson_cache",
			table: store.LessonCacheTable,
			want:  fieldNames(nil, schema.LessonCache{}.Fields()),
		},
		{
			name:  "user_profiles",
			table: store.UserProfilesTable,
			want:  fieldNames(nil, schema.UserProfile{}.Fields()),
		},
		{
			name:  "activities",
			table: store.ActivitiesTable,
			want:  fieldNames(schema.Activity{}.Mixin(), schema.Activity{}.Fields()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.table.Name != tt.name {
				t.Fatalf("table name = %q, want %q", tt.table.Name, tt.name)
			}
			got := columnNames(tt.table)
			if !slices.Equal(got, tt.want) {
				t.Errorf("columns = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLessonCacheUniquePerUserAndLesson(t *testing.T) {
	idx := schema.LessonCache{}.Indexes()
	if len(idx) != 1 {
		t.Fatalf("got %d indexes, want 1", len(idx))
	}
	d := idx[0].Descriptor()
	if !d.Unique {
		t.Error("lesson cache index should be unique")
	}
	if !slices.Equal(d.Fields, []string{"user_id", "lesson_id"}) {
		t.Errorf("index fields = %v", d.Fields)
	}
}
