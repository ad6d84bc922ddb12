package envs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/errors"
)

func TestEnvironmentLifecycle(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateEnvironment(CreateEnvironmentOptions{
		ConfigDir:   dir,
		Name:        "staging",
		Description: "staging lab",
	})
	require.NoError(t, err)

	list, err := ListEnvironments(ListEnvironmentsOptions{ConfigDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "default", list.Current)
	names := make([]string, 0, len(list.Environments))
	for _, e := range list.Environments {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "staging")

	switched, err := SwitchEnvironment(SwitchEnvironmentOptions{ConfigDir: dir, Name: "staging"})
	require.NoError(t, err)
	assert.Equal(t, "default", switched.Previous)
	assert.Equal(t, "staging", switched.Current)

	// Still current, so protected from deletion
	_, err = DeleteEnvironment(DeleteEnvironmentOptions{ConfigDir: dir, Name: "staging"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvProtected))

	_, err = SwitchEnvironment(SwitchEnvironmentOptions{ConfigDir: dir, Name: "default"})
	require.NoError(t, err)

	_, err = DeleteEnvironment(DeleteEnvironmentOptions{ConfigDir: dir, Name: "staging"})
	require.NoError(t, err)
}

func TestCreateInvalidName(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateEnvironment(CreateEnvironmentOptions{ConfigDir: dir, Name: "Staging!"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvInvalid))
}

func TestSwitchUnknownEnvironment(t *testing.T) {
	dir := t.TempDir()
	_, err := SwitchEnvironment(SwitchEnvironmentOptions{ConfigDir: dir, Name: "nope"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvNotFound))
}
