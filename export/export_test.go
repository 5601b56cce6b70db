package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	t.Run("three parts", func(t *testing.T) {
		got, err := ParseTarget("proj,mongodb://localhost:27017,matches")
		require.NoError(t, err)
		require.Equal(t, Target{
			Project:  "proj",
			Instance: "mongodb://localhost:27017",
			Table:    "matches",
		}, got)
	})

	t.Run("fields are trimmed", func(t *testing.T) {
		got, err := ParseTarget(" proj , uri , table ")
		require.NoError(t, err)
		require.Equal(t, "proj", got.Project)
		require.Equal(t, "table", got.Table)
	})

	t.Run("two parts is an error", func(t *testing.T) {
		_, err := ParseTarget("proj,instance")
		require.Error(t, err, "A malformed target is a fatal configuration error")
	})

	t.Run("four parts is an error", func(t *testing.T) {
		_, err := ParseTarget("a,b,c,d")
		require.Error(t, err)
	})

	t.Run("empty field is an error", func(t *testing.T) {
		_, err := ParseTarget("a,,c")
		require.Error(t, err)
	})
}
