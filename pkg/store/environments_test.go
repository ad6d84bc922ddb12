package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/errors"
	"github.com/aitherzero/configcore/pkg/events"
	"github.com/aitherzero/configcore/pkg/schema"
)

func TestCreateEnvironment(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateEnvironment("staging", "staging lab"))
	assert.True(t, s.HasEnvironment("staging"))

	infos := s.Environments()
	require.Len(t, infos, 2)
	assert.Equal(t, "default", infos[0].Name)
	assert.True(t, infos[0].Current)
	assert.Equal(t, "staging", infos[1].Name)
	assert.False(t, infos[1].Current)
}

func TestCreateEnvironmentValidatesName(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", "Staging", "has space", "-leading"} {
		err := s.CreateEnvironment(name, "")
		assert.True(t, errors.IsErrorCode(err, errors.ErrEnvInvalid), "name %q", name)
	}
	for _, name := range []string{"staging", "lab-2", "x", "0day", "under_score"} {
		assert.NoError(t, s.CreateEnvironment(name, ""), "name %q", name)
	}
}

func TestCreateEnvironmentDuplicate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateEnvironment("staging", ""))

	err := s.CreateEnvironment("staging", "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))
}

func TestSwitchEnvironmentEmitsEvents(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RegisterModule("labrunner", labSchema(), nil))
	require.NoError(t, s.CreateEnvironment("staging", ""))
	require.NoError(t, s.Set("labrunner", "staging", "port", 9443))

	var got []events.Event
	s.Bus().Subscribe(func(e events.Event) { got = append(got, e) },
		events.EventEnvSwitched, events.EventConfigChanged)

	require.NoError(t, s.SwitchEnvironment("staging"))
	assert.Equal(t, "staging", s.CurrentEnvironment())

	require.Len(t, got, 2)
	assert.Equal(t, events.EventEnvSwitched, got[0].Type)
	assert.Equal(t, "default", got[0].Data["previous"])
	assert.Equal(t, events.EventConfigChanged, got[1].Type)
	assert.Equal(t, "labrunner", got[1].Module)
}

func TestSwitchToSameEnvironmentIsNoOp(t *testing.T) {
	s := newTestStore(t)
	count := 0
	s.Bus().Subscribe(func(events.Event) { count++ })

	require.NoError(t, s.SwitchEnvironment("default"))
	assert.Zero(t, count)
}

func TestSwitchRejectedWhenTargetInvalid(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RegisterModule("labrunner", labSchema(), nil))
	require.NoError(t, s.CreateEnvironment("broken", ""))

	// Overlay makes the effective port invalid in "broken" only. Writing
	// it through Set would be rejected, so go behind the API the way an
	// external editor would.
	require.NoError(t, s.Reload())
	doc, sum, err := loadDocument(s.Paths().ConfigFile())
	require.NoError(t, err)
	_ = sum
	doc.Environments["broken"].Settings["labrunner"] = map[string]interface{}{"port": -5}
	_, err = saveDocument(s.Paths(), doc)
	require.NoError(t, err)
	require.NoError(t, s.Reload())

	err = s.SwitchEnvironment("broken")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvInvalid))
	assert.Equal(t, "default", s.CurrentEnvironment(), "failed switch must not change the current environment")
}

func TestDeleteEnvironmentProtections(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateEnvironment("staging", ""))
	require.NoError(t, s.SwitchEnvironment("staging"))

	err := s.DeleteEnvironment(DefaultEnvironment)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvProtected))

	err = s.DeleteEnvironment("staging")
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvProtected), "current environment is protected")

	require.NoError(t, s.SwitchEnvironment("default"))
	require.NoError(t, s.DeleteEnvironment("staging"))
	assert.False(t, s.HasEnvironment("staging"))
}

func TestDeleteUnknownEnvironment(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteEnvironment("ghost")
	assert.True(t, errors.IsErrorCode(err, errors.ErrEnvNotFound))
}

func TestEnvironmentOverlayAccessor(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.RegisterModule("labrunner", nil, nil))
	require.NoError(t, s.CreateEnvironment("staging", ""))
	require.NoError(t, s.Set("labrunner", "staging", "hostname", "lab-stage"))

	overlay, err := s.EnvironmentOverlay("staging", "labrunner")
	require.NoError(t, err)
	assert.Equal(t, "lab-stage", overlay["hostname"])

	overlay, err = s.EnvironmentOverlay("default", "labrunner")
	require.NoError(t, err)
	assert.Empty(t, overlay)
}

func TestSwitchValidatesAllModules(t *testing.T) {
	s := newTestStore(t)
	req := &schema.Schema{Properties: map[string]*schema.Property{
		"token": {Type: schema.TypeString, Required: true, Default: "x"},
	}}
	require.NoError(t, s.RegisterModule("gh", req, nil))
	require.NoError(t, s.CreateEnvironment("staging", ""))

	// staging inherits the valid base config, so the switch passes
	require.NoError(t, s.SwitchEnvironment("staging"))
}
