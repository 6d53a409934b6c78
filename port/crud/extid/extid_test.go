package extid_test

import (
	"testing"

	"go.llib.dev/testcase"

	"go.llib.dev/hookit/port/crud/extid"
)

func TestLookup(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test(`entity with a tagged id field`, func(t *testcase.T) {
		type E struct {
			Ident string `ext:"ID"`
		}
		id, ok := extid.Lookup[string](E{Ident: "42"})
		t.Must.True(ok)
		t.Must.Equal("42", id)
	})

	s.Test(`entity with a field named ID`, func(t *testcase.T) {
		type E struct{ ID int }
		id, ok := extid.Lookup[int](E{ID: 42})
		t.Must.True(ok)
		t.Must.Equal(42, id)
	})

	s.Test(`tagged field takes precedence over the ID named field`, func(t *testcase.T) {
		type E struct {
			Ident string `ext:"ID"`
			ID    string
		}
		id, ok := extid.Lookup[string](E{Ident: "tagged", ID: "named"})
		t.Must.True(ok)
		t.Must.Equal("tagged", id)
	})

	s.Test(`zero id value reports as not ok`, func(t *testcase.T) {
		type E struct{ ID string }
		_, ok := extid.Lookup[string](E{})
		t.Must.False(ok)
	})

	s.Test(`pointer indirection is dereferenced`, func(t *testcase.T) {
		type E struct{ ID string }
		id, ok := extid.Lookup[string](&E{ID: "42"})
		t.Must.True(ok)
		t.Must.Equal("42", id)
	})

	s.Test(`entity without an identifier field`, func(t *testcase.T) {
		type E struct{ V string }
		_, ok := extid.Lookup[string](E{V: "42"})
		t.Must.False(ok)
	})

	s.Test(`id type mismatch reports as not ok`, func(t *testcase.T) {
		type E struct{ ID string }
		_, ok := extid.Lookup[int](E{ID: "42"})
		t.Must.False(ok)
	})
}

func TestSet(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test(`assigns the id on the entity behind the pointer`, func(t *testcase.T) {
		type E struct {
			Ident string `ext:"ID"`
		}
		var ent E
		t.Must.NoError(extid.Set(&ent, "42"))
		t.Must.Equal("42", ent.Ident)
	})

	s.Test(`non pointer value is rejected`, func(t *testcase.T) {
		type E struct{ ID string }
		t.Must.Error(extid.Set(E{}, "42"))
	})

	s.Test(`entity without an identifier field is rejected`, func(t *testcase.T) {
		type E struct{ V string }
		var ent E
		t.Must.Error(extid.Set(&ent, "42"))
	})
}
