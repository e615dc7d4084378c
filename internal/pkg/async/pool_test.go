package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCollectsAllResults(t *testing.T) {
	pool := NewPool(2)

	results := pool.Execute(context.Background(), []Task{
		{Name: "a", Execute: func() (interface{}, error) { return 1, nil }},
		{Name: "b", Execute: func() (interface{}, error) { return "two", nil }},
		{Name: "c", Execute: func() (interface{}, error) { return nil, errors.New("boom") }},
	})

	require.Len(t, results, 3)
	assert.Equal(t, 1, results["a"].Data)
	assert.Equal(t, "two", results["b"].Data)
	assert.EqualError(t, results["c"].Err, "boom")
}

func TestExecuteNoTasks(t *testing.T) {
	pool := NewPool(4)
	results := pool.Execute(context.Background(), nil)
	assert.Empty(t, results)
}

func TestExecuteReturnsEarlyOnCancel(t *testing.T) {
	pool := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())

	block := make(chan struct{})
	done := make(chan map[string]Result, 1)
	go func() {
		done <- pool.Execute(ctx, []Task{
			{Name: "slow", Execute: func() (interface{}, error) {
				<-block
				return nil, nil
			}},
		})
	}()

	cancel()

	select {
	case results := <-done:
		assert.NotContains(t, results, "slow")
	case <-time.After(time.Second):
		t.Fatal("Execute did not return after cancellation")
	}
	close(block)
}
