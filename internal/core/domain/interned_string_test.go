package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/devshell/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("cmake")
	b := domain.NewInternedString("cmake")

	assert.Equal(t, a.Value(), b.Value(), "identical names share one handle")
	assert.Equal(t, "cmake", a.String())
	assert.Empty(t, domain.InternedString{}.String())
}

func TestInternedStringJSON(t *testing.T) {
	type ref struct {
		Name domain.InternedString `json:"name"`
	}

	data, err := json.Marshal(ref{Name: domain.NewInternedString("pyyaml")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"pyyaml"}`, string(data))

	var decoded ref
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "pyyaml", decoded.Name.String())
}
