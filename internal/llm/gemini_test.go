package llm

import (
	"testing"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiContentsMapsRoles(t *testing.T) {
	contents := geminiContents([]Turn{
		{Role: models.RoleUser, Text: "Hi"},
		{Role: models.RoleAssistant, Text: "Hello!"},
	})

	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	require.Len(t, contents[1].Parts, 1)
	assert.Equal(t, "Hello!", contents[1].Parts[0].Text)
}
