package httpkit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"

	"go.llib.dev/hookit/adapter/memory"
	"go.llib.dev/hookit/pkg/httpkit"
	"go.llib.dev/hookit/pkg/iterkit"
	"go.llib.dev/hookit/pkg/pathkit"
	"go.llib.dev/hookit/port/crud"
	"go.llib.dev/hookit/spechelper/fooapi"
	"go.llib.dev/hookit/spechelper/testent"
)

func ExampleRestClient() {
	client := httpkit.RestClient[testent.Foo, testent.FooID]{
		BaseURL: "https://mydomain.dev/api/v1/foos",
	}

	var ent = testent.Foo{Name: "foo"}

	err := client.Create(context.Background(), &ent)
	if err != nil {
		panic(err)
	}

	gotEnt, found, err := client.FindByID(context.Background(), ent.ID)
	if err != nil {
		panic(err)
	}
	_, _ = gotEnt, found
}

func TestRestClient_crud(t *testing.T) {
	s := testcase.NewSpec(t)

	var (
		repo = testcase.Let(s, func(t *testcase.T) *memory.Repository[testent.Foo, testent.FooID] {
			return &memory.Repository[testent.Foo, testent.FooID]{}
		})
		srv = testcase.Let(s, func(t *testcase.T) *httptest.Server {
			srv := httptest.NewServer(fooapi.Handler(repo.Get(t)))
			t.Defer(srv.Close)
			return srv
		})
		client = testcase.Let(s, func(t *testcase.T) httpkit.RestClient[testent.Foo, testent.FooID] {
			return httpkit.RestClient[testent.Foo, testent.FooID]{
				BaseURL:    srv.Get(t).URL + "/foos",
				HTTPClient: srv.Get(t).Client(),
			}
		})
		ctx = testcase.Let(s, func(t *testcase.T) context.Context { return context.Background() })
	)

	s.Describe("#Create", func(s *testcase.Spec) {
		s.Then("the entity is stored and the resource assigned identifier is set in place", func(t *testcase.T) {
			foo := testent.MakeFoo(t)
			t.Must.NoError(client.Get(t).Create(ctx.Get(t), &foo))
			t.Must.NotEmpty(foo.ID)

			stored, found, err := repo.Get(t).FindByID(ctx.Get(t), foo.ID)
			t.Must.NoError(err)
			t.Must.True(found)
			t.Must.Equal(foo, stored)
		})

		s.When("the entity already exists on the server", func(s *testcase.Spec) {
			s.Then("a conflict is reported", func(t *testcase.T) {
				foo := testent.MakeFoo(t)
				t.Must.NoError(client.Get(t).Create(ctx.Get(t), &foo))
				t.Must.ErrorIs(crud.ErrAlreadyExists, client.Get(t).Create(ctx.Get(t), &foo))
			})
		})
	})

	s.Describe("#FindByID", func(s *testcase.Spec) {
		s.Then("the stored entity is returned", func(t *testcase.T) {
			foo := testent.MakeFoo(t)
			t.Must.NoError(repo.Get(t).Create(ctx.Get(t), &foo))

			got, found, err := client.Get(t).FindByID(ctx.Get(t), foo.ID)
			t.Must.NoError(err)
			t.Must.True(found)
			t.Must.Equal(foo, got)
		})

		s.Then("absence reports as not found without an error", func(t *testcase.T) {
			_, found, err := client.Get(t).FindByID(ctx.Get(t), testent.FooID(t.Random.UUID()))
			t.Must.NoError(err)
			t.Must.False(found)
		})
	})

	s.Describe("#FindAll", func(s *testcase.Spec) {
		s.Then("every entity is returned in the order the server listed them", func(t *testcase.T) {
			var expected []testent.Foo
			t.Random.Repeat(3, 7, func() {
				foo := testent.MakeFoo(t)
				t.Must.NoError(repo.Get(t).Create(ctx.Get(t), &foo))
				expected = append(expected, foo)
			})

			got, err := iterkit.CollectE(client.Get(t).FindAll(ctx.Get(t)))
			t.Must.NoError(err)
			t.Must.Equal(expected, got)
		})

		s.When("query values are set in the context", func(s *testcase.Spec) {
			s.Then("the request carries them", func(t *testcase.T) {
				foo := testent.MakeFoo(t)
				t.Must.NoError(repo.Get(t).Create(ctx.Get(t), &foo))

				qctx := httpkit.WithQuery(ctx.Get(t), url.Values{"name": {foo.Name}})
				got, err := iterkit.CollectE(client.Get(t).FindAll(qctx))
				t.Must.NoError(err)
				t.Must.Equal([]testent.Foo{foo}, got)
			})
		})
	})

	s.Describe("#Update", func(s *testcase.Spec) {
		s.Then("the changed field values are stored", func(t *testcase.T) {
			foo := testent.MakeFoo(t)
			t.Must.NoError(repo.Get(t).Create(ctx.Get(t), &foo))

			foo.Name = t.Random.StringNC(8, "abcdefghijklmnopqrstuvwxyz")
			t.Must.NoError(client.Get(t).Update(ctx.Get(t), &foo))

			stored, found, err := repo.Get(t).FindByID(ctx.Get(t), foo.ID)
			t.Must.NoError(err)
			t.Must.True(found)
			t.Must.Equal(foo, stored)
		})

		s.Then("updating an absent entity reports not found", func(t *testcase.T) {
			foo := testent.MakeFoo(t)
			foo.ID = testent.FooID(t.Random.UUID())
			t.Must.ErrorIs(crud.ErrNotFound, client.Get(t).Update(ctx.Get(t), &foo))
		})

		s.Then("updating an entity without an identifier fails before any request is made", func(t *testcase.T) {
			foo := testent.MakeFoo(t)
			t.Must.Error(client.Get(t).Update(ctx.Get(t), &foo))
		})
	})

	s.Describe("#UpdateMany", func(s *testcase.Spec) {
		s.Then("every entity is updated with a single request, and the reply keeps length and order", func(t *testcase.T) {
			var ents []testent.Foo
			t.Random.Repeat(3, 7, func() {
				foo := testent.MakeFoo(t)
				t.Must.NoError(repo.Get(t).Create(ctx.Get(t), &foo))
				ents = append(ents, foo)
			})
			for i := range ents {
				ents[i].Name = t.Random.StringNC(8, "abcdefghijklmnopqrstuvwxyz")
			}

			got, err := client.Get(t).UpdateMany(ctx.Get(t), ents)
			t.Must.NoError(err)
			t.Must.Equal(ents, got)

			for _, ent := range ents {
				stored, found, err := repo.Get(t).FindByID(ctx.Get(t), ent.ID)
				t.Must.NoError(err)
				t.Must.True(found)
				t.Must.Equal(ent, stored)
			}
		})

		s.Then("a batch member without an identifier fails before any request is made", func(t *testcase.T) {
			_, err := client.Get(t).UpdateMany(ctx.Get(t), []testent.Foo{testent.MakeFoo(t)})
			t.Must.Error(err)
		})
	})

	s.Describe("#DeleteByID", func(s *testcase.Spec) {
		s.Then("the entity is removed from the server", func(t *testcase.T) {
			foo := testent.MakeFoo(t)
			t.Must.NoError(repo.Get(t).Create(ctx.Get(t), &foo))
			t.Must.NoError(client.Get(t).DeleteByID(ctx.Get(t), foo.ID))

			_, found, err := repo.Get(t).FindByID(ctx.Get(t), foo.ID)
			t.Must.NoError(err)
			t.Must.False(found)
		})

		s.Then("deleting an absent entity reports not found", func(t *testcase.T) {
			t.Must.ErrorIs(crud.ErrNotFound,
				client.Get(t).DeleteByID(ctx.Get(t), testent.FooID(t.Random.UUID())))
		})
	})

	s.Describe("#DeleteAll", func(s *testcase.Spec) {
		s.Then("every entity is removed from the server", func(t *testcase.T) {
			t.Random.Repeat(2, 5, func() {
				foo := testent.MakeFoo(t)
				t.Must.NoError(repo.Get(t).Create(ctx.Get(t), &foo))
			})
			t.Must.NoError(client.Get(t).DeleteAll(ctx.Get(t)))

			got, err := iterkit.CollectE(repo.Get(t).FindAll(ctx.Get(t)))
			t.Must.NoError(err)
			t.Must.Empty(got)
		})
	})
}

func TestRestClient_pathParams(t *testing.T) {
	s := testcase.NewSpec(t)

	var requests = testcase.Let(s, func(t *testcase.T) *[]*http.Request {
		return &[]*http.Request{}
	})

	client := testcase.Let(s, func(t *testcase.T) httpkit.RestClient[testent.Foo, testent.FooID] {
		return httpkit.RestClient[testent.Foo, testent.FooID]{
			BaseURL: "https://example.com/nesteds/:nestedId/records",
			HTTPClient: &http.Client{
				Transport: httpkit.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
					*requests.Get(t) = append(*requests.Get(t), r)
					rec := httptest.NewRecorder()
					rec.Header().Set("Content-Type", "application/json")
					rec.WriteString(`{"id":"42","name":"foo"}`)
					return rec.Result(), nil
				}),
			},
		}
	})

	s.When("the context carries the placeholder value", func(s *testcase.Spec) {
		s.Then("the request goes to the substituted path", func(t *testcase.T) {
			ctx := httpkit.WithPathParam(context.Background(), "nestedId", "10")

			_, found, err := client.Get(t).FindByID(ctx, "42")
			t.Must.NoError(err)
			t.Must.True(found)

			t.Must.Equal(1, len(*requests.Get(t)))
			t.Must.Equal("/nesteds/10/records/42", (*requests.Get(t))[0].URL.Path)
		})
	})

	s.When("the placeholder value is missing", func(s *testcase.Spec) {
		s.Then("the operation fails before any request is made", func(t *testcase.T) {
			_, _, err := client.Get(t).FindByID(context.Background(), "42")
			t.Must.ErrorIs(pathkit.ErrMissingParam, err)
			t.Must.Empty(*requests.Get(t))
		})
	})
}

func TestRestClient_unexpectedResponse(t *testing.T) {
	var calls int32
	client := httpkit.RestClient[testent.Foo, testent.FooID]{
		BaseURL: "https://example.com/foos",
		HTTPClient: &http.Client{
			Transport: httpkit.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				atomic.AddInt32(&calls, 1)
				rec := httptest.NewRecorder()
				rec.WriteHeader(http.StatusTeapot)
				rec.WriteString("I'm a teapot")
				return rec.Result(), nil
			}),
		},
	}

	_, _, err := client.FindByID(context.Background(), "42")
	assert.Error(t, err)

	var gotErr httpkit.ClientErrUnexpectedResponse
	assert.True(t, errors.As(err, &gotErr))
	assert.Equal(t, http.StatusTeapot, gotErr.StatusCode)
	assert.Contain(t, gotErr.Error(), "I'm a teapot")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
