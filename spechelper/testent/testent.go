// Package testent holds shared test entities.
package testent

import (
	"testing"

	"go.llib.dev/testcase/random"
)

type Foo struct {
	ID   FooID  `ext:"ID" json:"id"`
	Name string `json:"name"`
	Bar  string `json:"bar"`
	Baz  string `json:"baz"`
}

type FooID string

func (f Foo) LookupID() (FooID, bool) {
	return f.ID, f.ID != ""
}

func MakeFoo(tb testing.TB) Foo {
	rnd := random.New(random.CryptoSeed{})
	return Foo{
		Name: rnd.StringNC(8, random.CharsetAlpha()),
		Bar:  rnd.StringNC(5, random.CharsetAlpha()),
		Baz:  rnd.StringNC(5, random.CharsetAlpha()),
	}
}
