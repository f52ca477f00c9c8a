package phpemitter

import (
	"testing"

	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/engine/enginetest"
	"github.com/mark3labs/eeclientgen/internal/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeMapper_Totality(t *testing.T) {
	t.Parallel()
	m := NewTypeMapper(engine.NewSession(ID))
	for _, name := range engine.PrimitiveNames {
		got, err := m.Resolve(&spec.DataType{TypeName: spec.String(name), IsPrimitive: true}, "void", false)
		require.NoError(t, err, name)
		assert.NotEmpty(t, got, name)
	}

	dict := &spec.DataType{TypeName: spec.String("String,Int32"), IsDictionary: true, IsFile: true, IsList: true, IsArray: true, IsNullable: true}
	for _, forParam := range []bool{false, true} {
		got, err := m.Resolve(dict, "void", forParam)
		require.NoError(t, err)
		assert.Equal(t, `array<string, int>`, got)
	}
}

func TestEmit_ReservedClassName(t *testing.T) {
	t.Parallel()
	art, err := New(engine.DefaultSettings()).Emit(engine.NewSession(ID), enginetest.WithReservedClass("Interface"))
	require.NoError(t, err)
	out := art.Text()

	assert.Contains(t, out, `abstract class EEInterface`)
	assert.Contains(t, out, `\ApiTypes\EEInterface::A`)
	assert.Contains(t, out, `\ApiTypes\EEInterface`)
	assert.NotContains(t, out, `\ApiTypes\Interface`)
}

func TestDefaultFormatter_StringKeepsCase(t *testing.T) {
	t.Parallel()
	f := NewDefaultFormatter(NewSanitizer())
	got, err := f.Format(spec.Parameter{
		Field:    spec.Field{Name: "subject", Type: &spec.DataType{TypeName: spec.String("String"), IsPrimitive: true}},
		CallSite: spec.CallSite{HasDefaultValue: true, DefaultValue: spec.String("True")},
	})
	require.NoError(t, err)
	assert.Contains(t, got, "True")
	assert.NotEqual(t, "True", got, "string defaults are quoted")
}
