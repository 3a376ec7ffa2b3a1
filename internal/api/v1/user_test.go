package v1_test

import (
	"context"
	"testing"

	"todo-backend/internal/config"
	"todo-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserVisibility(t *testing.T) {
	app := requireStack(t)
	alice := signUp(t, app)
	bob := signUp(t, app)

	staffName := uniqueName("staff")
	_, err := repository.CreateStaffUser(context.Background(), config.DB, staffName, staffName+"@example.com", "staffpass")
	require.NoError(t, err)
	staff := login(t, app, staffName, "staffpass")

	// Member hanya melihat dirinya sendiri
	list := call(t, app, "GET", "/users", alice.Access, nil)
	require.Equal(t, 200, list.Status)
	require.Len(t, list.List(), 1)
	assert.Equal(t, alice.Username, list.List()[0].(map[string]interface{})["username"])

	assert.Equal(t, 404, call(t, app, "GET", path("/users/%d", bob.ID), alice.Access, nil).Status)
	assert.Equal(t, 404, call(t, app, "PATCH", path("/users/%d", bob.ID), alice.Access, map[string]string{"first_name": "x"}).Status)
	assert.Equal(t, 404, call(t, app, "DELETE", path("/users/%d", bob.ID), alice.Access, nil).Status)

	// Staff boleh membaca semua user tetapi hanya menulis dirinya sendiri
	staffList := call(t, app, "GET", "/users", staff.Access, nil)
	require.Equal(t, 200, staffList.Status)
	assert.GreaterOrEqual(t, len(staffList.List()), 3)
	assert.Equal(t, 200, call(t, app, "GET", path("/users/%d", bob.ID), staff.Access, nil).Status)
	assert.Equal(t, 403, call(t, app, "PATCH", path("/users/%d", bob.ID), staff.Access, map[string]string{"first_name": "x"}).Status)
	assert.Equal(t, 403, call(t, app, "DELETE", path("/users/%d", bob.ID), staff.Access, nil).Status)
	assert.Equal(t, 404, call(t, app, "GET", "/users/999999", staff.Access, nil).Status)
}

func TestUpdateOwnProfile(t *testing.T) {
	app := requireStack(t)
	acc := signUp(t, app)

	patched := call(t, app, "PATCH", path("/users/%d", acc.ID), acc.Access, map[string]string{
		"last_name": "Lovelace",
		"password":  "newsecret",
	})
	require.Equal(t, 200, patched.Status, patched.Body)
	assert.Equal(t, "Lovelace", patched.Data()["last_name"])
	assert.Equal(t, acc.Username, patched.Data()["username"])

	// Password baru di-hash ulang dan dipakai untuk login
	login(t, app, acc.Username, "newsecret")

	put := call(t, app, "PUT", path("/users/%d", acc.ID), acc.Access, map[string]string{"first_name": "Ada"})
	assert.Equal(t, 400, put.Status)
	assert.Contains(t, put.Errors(), "username")

	me := call(t, app, "GET", "/users/me", acc.Access, nil)
	assert.Equal(t, "Lovelace", me.Data()["last_name"])

	assert.Equal(t, 204, call(t, app, "DELETE", path("/users/%d", acc.ID), acc.Access, nil).Status)
	assert.Equal(t, 404, call(t, app, "GET", "/users/me", acc.Access, nil).Status)
}
