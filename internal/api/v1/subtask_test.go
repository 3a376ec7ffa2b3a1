package v1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubTaskLifecycle(t *testing.T) {
	app := requireStack(t)
	acc := signUp(t, app)

	first := createTask(t, app, acc.Access, map[string]interface{}{"title": "first"})
	second := createTask(t, app, acc.Access, map[string]interface{}{"title": "second"})

	b := call(t, app, "POST", "/subtasks", acc.Access, map[string]interface{}{"task": idOf(first), "title": "b", "position": 2})
	require.Equal(t, 201, b.Status, b.Body)
	a := call(t, app, "POST", "/subtasks", acc.Access, map[string]interface{}{"task": idOf(first), "title": "a", "position": 1})
	require.Equal(t, 201, a.Status, a.Body)
	assert.Equal(t, false, a.Data()["completed"])

	listed := call(t, app, "GET", path("/subtasks?task=%d", idOf(first)), acc.Access, nil)
	require.Equal(t, 200, listed.Status)
	require.Len(t, listed.List(), 2)
	assert.Equal(t, "a", listed.List()[0].(map[string]interface{})["title"])

	done := call(t, app, "PATCH", path("/subtasks/%d", idOf(a.Data())), acc.Access, map[string]interface{}{"completed": true})
	require.Equal(t, 200, done.Status)
	assert.Equal(t, true, done.Data()["completed"])
	assert.Equal(t, "a", done.Data()["title"])

	moved := call(t, app, "PATCH", path("/subtasks/%d", idOf(b.Data())), acc.Access, map[string]interface{}{"task": idOf(second)})
	require.Equal(t, 200, moved.Status)
	assert.Equal(t, float64(idOf(second)), moved.Data()["task"])

	put := call(t, app, "PUT", path("/subtasks/%d", idOf(b.Data())), acc.Access, map[string]interface{}{"title": "only title"})
	assert.Equal(t, 400, put.Status)
	assert.Contains(t, put.Errors(), "task")

	assert.Equal(t, 204, call(t, app, "DELETE", path("/subtasks/%d", idOf(a.Data())), acc.Access, nil).Status)
	assert.Len(t, call(t, app, "GET", "/subtasks", acc.Access, nil).List(), 1)
}

func TestSubTaskRequiresOwnedTask(t *testing.T) {
	app := requireStack(t)
	owner := signUp(t, app)
	other := signUp(t, app)

	task := createTask(t, app, owner.Access, map[string]interface{}{"title": "owned"})
	sub := call(t, app, "POST", "/subtasks", owner.Access, map[string]interface{}{"task": idOf(task), "title": "step"})
	require.Equal(t, 201, sub.Status)
	subPath := path("/subtasks/%d", idOf(sub.Data()))

	res := call(t, app, "POST", "/subtasks", other.Access, map[string]interface{}{"task": idOf(task), "title": "intrude"})
	assert.Equal(t, 400, res.Status)
	assert.Contains(t, res.Errors(), "task")

	missing := call(t, app, "POST", "/subtasks", other.Access, map[string]interface{}{"title": "orphan"})
	assert.Equal(t, 400, missing.Status)
	assert.Contains(t, missing.Errors(), "task")

	assert.Equal(t, 404, call(t, app, "GET", subPath, other.Access, nil).Status)
	assert.Equal(t, 404, call(t, app, "PATCH", subPath, other.Access, map[string]interface{}{"completed": true}).Status)
	assert.Equal(t, 404, call(t, app, "DELETE", subPath, other.Access, nil).Status)
	assert.Empty(t, call(t, app, "GET", "/subtasks", other.Access, nil).List())

	// Tidak boleh memindahkan subtask ke task milik orang lain
	mine := createTask(t, app, other.Access, map[string]interface{}{"title": "mine"})
	assert.Equal(t, 400, call(t, app, "PATCH", subPath, owner.Access, map[string]interface{}{"task": idOf(mine)}).Status)
}
