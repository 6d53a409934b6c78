package lifekit_test

import (
	"sync"
	"testing"

	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"

	"go.llib.dev/hookit/pkg/lifekit"
)

var _ lifekit.Lifecycle = &lifekit.Mount{}

func TestToken(t *testing.T) {
	s := testcase.NewSpec(t)

	var token = testcase.Let(s, func(t *testcase.T) *lifekit.Token {
		return &lifekit.Token{}
	})

	s.Test(`the zero value token is active`, func(t *testcase.T) {
		t.Must.False(token.Get(t).IsCancelled())
	})

	s.When(`the token is active`, func(s *testcase.Spec) {
		s.Then(`Guard runs the block and reports it ran`, func(t *testcase.T) {
			var ran bool
			t.Must.True(token.Get(t).Guard(func() { ran = true }))
			t.Must.True(ran)
		})
	})

	s.When(`the token got cancelled`, func(s *testcase.Spec) {
		s.Before(func(t *testcase.T) {
			token.Get(t).Cancel()
		})

		s.Then(`the token reports itself as cancelled`, func(t *testcase.T) {
			t.Must.True(token.Get(t).IsCancelled())
		})

		s.Then(`Guard absorbs the block without running it`, func(t *testcase.T) {
			var ran bool
			t.Must.False(token.Get(t).Guard(func() { ran = true }))
			t.Must.False(ran)
		})

		s.Then(`cancelling again is a no-op`, func(t *testcase.T) {
			token.Get(t).Cancel()
			t.Must.True(token.Get(t).IsCancelled())
		})

		s.Then(`there is no transition back to the active state`, func(t *testcase.T) {
			var ran bool
			token.Get(t).Guard(func() { ran = true })
			token.Get(t).Guard(func() { ran = true })
			t.Must.False(ran)
		})
	})

	s.Test(`a cancellation is visible to every guard check that follows it`, func(t *testcase.T) {
		var (
			tkn   = token.Get(t)
			wg    sync.WaitGroup
			mutex sync.Mutex
			ran   int
		)
		tkn.Cancel()
		for i := 0; i < 42; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tkn.Guard(func() {
					mutex.Lock()
					defer mutex.Unlock()
					ran++
				})
			}()
		}
		wg.Wait()
		t.Must.Equal(0, ran)
	})
}

func TestAttach(t *testing.T) {
	s := testcase.NewSpec(t)

	var mount = testcase.Let(s, func(t *testcase.T) *lifekit.Mount {
		return &lifekit.Mount{}
	})

	s.Test(`the attached token follows the lifecycle of its mount`, func(t *testcase.T) {
		token := lifekit.Attach(mount.Get(t))
		t.Must.False(token.IsCancelled())
		mount.Get(t).Detach()
		t.Must.True(token.IsCancelled())
	})

	s.Test(`each attach yields its own token`, func(t *testcase.T) {
		token1 := lifekit.Attach(mount.Get(t))
		token2 := lifekit.Attach(mount.Get(t))
		t.Must.NotEqual(token1, token2)
		token1.Cancel()
		t.Must.False(token2.IsCancelled())
	})

	s.Test(`one detach cancels every attached token`, func(t *testcase.T) {
		token1 := lifekit.Attach(mount.Get(t))
		token2 := lifekit.Attach(mount.Get(t))
		mount.Get(t).Detach()
		t.Must.True(token1.IsCancelled())
		t.Must.True(token2.IsCancelled())
	})

	s.Test(`attaching to an already detached mount yields a cancelled token`, func(t *testcase.T) {
		mount.Get(t).Detach()
		token := lifekit.Attach(mount.Get(t))
		t.Must.True(token.IsCancelled())
	})

	s.Test(`a nil lifecycle yields a free standing active token`, func(t *testcase.T) {
		token := lifekit.Attach(nil)
		t.Must.False(token.IsCancelled())
	})
}

func TestMount(t *testing.T) {
	s := testcase.NewSpec(t)

	var mount = testcase.Let(s, func(t *testcase.T) *lifekit.Mount {
		return &lifekit.Mount{}
	})

	s.Test(`detaching without any registered teardown is valid`, func(t *testcase.T) {
		mount.Get(t).Detach()
		t.Must.True(mount.Get(t).IsDetached())
	})

	s.Test(`teardowns run exactly once even with repeated detach calls`, func(t *testcase.T) {
		var count int
		mount.Get(t).OnDetach(func() { count++ })
		mount.Get(t).Detach()
		mount.Get(t).Detach()
		mount.Get(t).Detach()
		t.Must.Equal(1, count)
	})

	s.Test(`teardowns run in reverse registration order`, func(t *testcase.T) {
		var order []int
		mount.Get(t).OnDetach(func() { order = append(order, 1) })
		mount.Get(t).OnDetach(func() { order = append(order, 2) })
		mount.Get(t).OnDetach(func() { order = append(order, 3) })
		mount.Get(t).Detach()
		t.Must.Equal([]int{3, 2, 1}, order)
	})

	s.Test(`teardown registered after detach runs immediately`, func(t *testcase.T) {
		mount.Get(t).Detach()
		var ran bool
		mount.Get(t).OnDetach(func() { ran = true })
		t.Must.True(ran)
	})

	s.Test(`nil teardown registration is ignored`, func(t *testcase.T) {
		mount.Get(t).OnDetach(nil)
		mount.Get(t).Detach()
	})

	s.Test(`exactly once semantics hold under rapid attach and detach cycles`, func(t *testcase.T) {
		for i := 0; i < 42; i++ {
			var m lifekit.Mount
			var count int
			m.OnDetach(func() { count++ })
			m.Detach()
			m.Detach()
			assert.Equal(t, 1, count)
		}
	})
}
