package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()

	assert.Equal(t, len(BuiltinDefinitions()), c.Len())
	assert.Equal(t, TypeText, c.Types()[0])

	echo, ok := c.Get(TypeEcho)
	require.True(t, ok)
	in, ok := echo.Input("in")
	require.True(t, ok)
	assert.Equal(t, domain.KindAny, in.Kind)
	_, ok = echo.Output("in")
	assert.False(t, ok)
}

func TestRegister_RejectsDuplicatesAndEmptyType(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	require.NoError(t, c.Register(domain.NodeDefinition{Type: "a", Name: "A"}))
	assert.ErrorIs(t, c.Register(domain.NodeDefinition{Type: "a"}), ErrDuplicateType)
	assert.Error(t, c.Register(domain.NodeDefinition{Name: "nameless"}))
	assert.Equal(t, 1, c.Len())
}

func TestLookup_UnknownType(t *testing.T) {
	_, err := Builtin().Lookup("teleport")
	assert.ErrorIs(t, err, domain.ErrUnknownType)
}

func TestGet_ReturnsCopies(t *testing.T) {
	c := Builtin()
	def, _ := c.Get(TypeJoin)
	def.Defaults["separator"] = "!"
	def.Inputs[0].ID = "mutated"

	again, _ := c.Get(TypeJoin)
	assert.Equal(t, " ", again.Defaults["separator"])
	assert.Equal(t, "a", again.Inputs[0].ID)
}

func TestExtend(t *testing.T) {
	c := Builtin()
	base := c.Len()

	require.NoError(t, c.Extend("testdata/extra.yaml"))
	require.NoError(t, c.Extend("testdata/extra.json"))
	assert.Equal(t, base+3, c.Len())

	upload, ok := c.Get("upload-image")
	require.True(t, ok)
	assert.True(t, upload.HasSettings)
	assert.Equal(t, domain.KindObject, upload.Outputs[0].Kind)
	assert.Equal(t, "", upload.Defaults["path"])

	// Loading the same file twice collides on types.
	assert.ErrorIs(t, c.Extend("testdata/extra.json"), ErrDuplicateType)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("testdata/nope.yaml")
	assert.Error(t, err)
}
